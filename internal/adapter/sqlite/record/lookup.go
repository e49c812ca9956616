package record

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/marumori/jiten/internal/adapter/sqlite"
	"github.com/marumori/jiten/internal/domain"
)

// LookupLemma returns records matching the lemma on either headword or
// reading, restricted to the profile's enabled dictionaries and the
// requested kinds, ranked by the composite key:
//
//  1. dictionary position ascending (user priority dominates everything);
//  2. rows without sorting-dictionary frequency data before rows with it;
//  3. frequency, most frequent first — rank mode sorts by value ascending,
//     occurrence mode by negated value, so one ascending key serves both;
//  4. record id ascending, the stable tie-break.
//
// Frequency data is joined from sortingDict only and its absence is never an
// error. A record whose stored kind or payload cannot be decoded aborts the
// whole query with a CorruptDataError.
func (r *Repo) LookupLemma(ctx context.Context, profile domain.ProfileID, sortingDict *domain.DictionaryID, lemma string, kinds []domain.RecordKind) ([]domain.LookupResult, error) {
	q := sqlite.QuerierFromCtx(ctx, r.db)

	// A nil sorting dictionary joins against an id no row can have, keeping
	// one query shape for both cases.
	freqSource := domain.DictionaryID(-1)
	if sortingDict != nil {
		freqSource = *sortingDict
	}

	kindInts := make([]int, len(kinds))
	for i, k := range kinds {
		kindInts[i] = int(k)
	}

	query, args, err := sq.Select(
		"record.id", "record.source", "record.kind",
		"record.headword", "record.reading", "record.data",
		"dictionary.position", "frequency.mode", "frequency.value").
		From("record").
		Join("dictionary ON dictionary.id = record.source").
		Join("profile_enabled_dictionary ped ON ped.dictionary = record.source AND ped.profile = ?", profile).
		// Mirrors Term matching: at least one side present on both rows must
		// be equal, and a side present on both rows must never conflict. A
		// plain equality on headword would NULL out for reading-only rows.
		LeftJoin(`frequency ON frequency.source = ?
			AND ((frequency.headword IS NOT NULL AND frequency.headword = record.headword)
				OR (frequency.reading IS NOT NULL AND frequency.reading = record.reading))
			AND (frequency.headword IS NULL OR record.headword IS NULL
				OR frequency.headword = record.headword)
			AND (frequency.reading IS NULL OR record.reading IS NULL
				OR frequency.reading = record.reading)`, freqSource).
		Where(sq.And{
			sq.Or{sq.Eq{"record.headword": lemma}, sq.Eq{"record.reading": lemma}},
			sq.Eq{"record.kind": kindInts},
		}).
		OrderBy(
			"dictionary.position ASC",
			"(frequency.value IS NOT NULL) ASC",
			"CASE frequency.mode WHEN 1 THEN -frequency.value ELSE frequency.value END ASC",
			"record.id ASC",
		).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lookup query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", lemma, err)
	}
	defer rows.Close()

	var out []domain.LookupResult
	seen := map[int64]struct{}{}
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		// The frequency join can match one record more than once; the first
		// row is the best-ranked, later ones are duplicates.
		if _, dup := seen[res.Record.ID]; dup {
			continue
		}
		seen[res.Record.ID] = struct{}{}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func scanResult(rows *sql.Rows) (*domain.LookupResult, error) {
	var (
		res       domain.LookupResult
		kind      int
		headword  sql.NullString
		reading   sql.NullString
		data      []byte
		freqMode  sql.NullInt64
		freqValue sql.NullInt64
	)
	if err := rows.Scan(&res.Record.ID, &res.Record.Source, &kind,
		&headword, &reading, &data,
		&res.Position, &freqMode, &freqValue); err != nil {
		return nil, fmt.Errorf("scan lookup row: %w", err)
	}

	res.Record.Term = domain.Term{Headword: headword.String, Reading: reading.String}

	payload, err := domain.DecodePayload(domain.RecordKind(kind), data)
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", res.Record.ID, err)
	}
	res.Record.Payload = payload

	if freqValue.Valid {
		res.Frequency = &domain.Frequency{
			Mode:  domain.FrequencyMode(freqMode.Int64),
			Value: freqValue.Int64,
		}
	}
	return &res, nil
}
