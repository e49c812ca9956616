// Package profile implements the profile repository: scalar config, the
// per-profile enabled-dictionary set, and the process-wide current-profile
// selection.
package profile

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/marumori/jiten/internal/adapter/sqlite"
	"github.com/marumori/jiten/internal/domain"
)

// Repo provides profile persistence.
type Repo struct {
	db *sql.DB
}

// New creates a new profile repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

var columns = []string{"id", "name", "sorting_dictionary", "font_family", "anki_deck", "anki_note_type"}

// GetByID returns a profile with its enabled-dictionary set.
// Returns domain.ErrNotFound if absent.
func (r *Repo) GetByID(ctx context.Context, id domain.ProfileID) (*domain.Profile, error) {
	q := sqlite.QuerierFromCtx(ctx, r.db)

	query, args, err := sq.Select(columns...).
		From("profile").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build profile query: %w", err)
	}

	p, err := scanOne(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, id)
	}

	enabled, err := r.enabledSet(ctx, q, id)
	if err != nil {
		return nil, err
	}
	p.EnabledDictionaries = enabled
	return p, nil
}

// ListAll returns every profile with its enabled-dictionary set.
func (r *Repo) ListAll(ctx context.Context) ([]domain.Profile, error) {
	q := sqlite.QuerierFromCtx(ctx, r.db)

	query, args, err := sq.Select(columns...).
		From("profile").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build profile list query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []domain.Profile
	byID := map[domain.ProfileID]int{}
	for rows.Next() {
		p, err := scanRows(rows)
		if err != nil {
			return nil, err
		}
		p.EnabledDictionaries = map[domain.DictionaryID]struct{}{}
		byID[p.ID] = len(out)
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	memberRows, err := q.QueryContext(ctx,
		`SELECT profile, dictionary FROM profile_enabled_dictionary`)
	if err != nil {
		return nil, fmt.Errorf("list enabled dictionaries: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var pid domain.ProfileID
		var did domain.DictionaryID
		if err := memberRows.Scan(&pid, &did); err != nil {
			return nil, fmt.Errorf("scan enabled dictionary: %w", err)
		}
		if i, ok := byID[pid]; ok {
			out[i].EnabledDictionaries[did] = struct{}{}
		}
	}
	return out, memberRows.Err()
}

// Create inserts a profile with the given display name (empty means unnamed)
// and returns it with its assigned id. The enabled-dictionary set starts
// empty.
func (r *Repo) Create(ctx context.Context, name string) (*domain.Profile, error) {
	q := sqlite.QuerierFromCtx(ctx, r.db)

	res, err := q.ExecContext(ctx,
		`INSERT INTO profile (name) VALUES (?)`, nullableName(name))
	if err != nil {
		return nil, mapError(err, 0)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("profile insert id: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Copy duplicates the source profile's scalar config and enabled-dictionary
// set under a new identity, with the given display name. Must run inside a
// transaction so the two inserts publish together.
func (r *Repo) Copy(ctx context.Context, src domain.ProfileID, name string) (*domain.Profile, error) {
	q := sqlite.QuerierFromCtx(ctx, r.db)

	res, err := q.ExecContext(ctx,
		`INSERT INTO profile (name, sorting_dictionary, font_family, anki_deck, anki_note_type)
		 SELECT ?, sorting_dictionary, font_family, anki_deck, anki_note_type
		 FROM profile WHERE id = ?`,
		nullableName(name), src)
	if err != nil {
		return nil, mapError(err, src)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("profile copy rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("profile %d: %w", src, domain.ErrNotFound)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("profile copy insert id: %w", err)
	}

	if _, err := q.ExecContext(ctx,
		`INSERT INTO profile_enabled_dictionary (profile, dictionary)
		 SELECT ?, dictionary FROM profile_enabled_dictionary WHERE profile = ?`,
		id, src); err != nil {
		return nil, mapError(err, src)
	}

	return r.GetByID(ctx, id)
}

// SetName updates the display name. Returns domain.ErrNotFound if absent.
func (r *Repo) SetName(ctx context.Context, id domain.ProfileID, name string) error {
	return r.update(ctx, id, `UPDATE profile SET name = ? WHERE id = ?`, nullableName(name), id)
}

// SetConfig replaces the scalar config fields.
func (r *Repo) SetConfig(ctx context.Context, id domain.ProfileID, cfg domain.ProfileConfig) error {
	return r.update(ctx, id,
		`UPDATE profile SET font_family = ?, anki_deck = ?, anki_note_type = ? WHERE id = ?`,
		cfg.FontFamily, cfg.AnkiDeck, cfg.AnkiNoteType, id)
}

// SetSortingDictionary sets or clears (nil) the sorting dictionary.
func (r *Repo) SetSortingDictionary(ctx context.Context, id domain.ProfileID, dict *domain.DictionaryID) error {
	var v any
	if dict != nil {
		v = *dict
	}
	return r.update(ctx, id, `UPDATE profile SET sorting_dictionary = ? WHERE id = ?`, v, id)
}

// Remove deletes a profile; its enabled-dictionary rows cascade.
// Returns domain.ErrNotFound if the id does not exist.
func (r *Repo) Remove(ctx context.Context, id domain.ProfileID) error {
	q := sqlite.QuerierFromCtx(ctx, r.db)

	res, err := q.ExecContext(ctx, `DELETE FROM profile WHERE id = ?`, id)
	if err != nil {
		return mapError(err, id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("profile delete rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("profile %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// EnableDictionary adds a dictionary to the profile's enabled set.
// Enabling an already-enabled dictionary is a no-op.
func (r *Repo) EnableDictionary(ctx context.Context, id domain.ProfileID, dict domain.DictionaryID) error {
	q := sqlite.QuerierFromCtx(ctx, r.db)

	_, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO profile_enabled_dictionary (profile, dictionary) VALUES (?, ?)`,
		id, dict)
	if err != nil {
		return mapError(err, id)
	}
	return nil
}

// DisableDictionary removes a dictionary from the profile's enabled set.
// Disabling a dictionary that is not enabled is a no-op.
func (r *Repo) DisableDictionary(ctx context.Context, id domain.ProfileID, dict domain.DictionaryID) error {
	q := sqlite.QuerierFromCtx(ctx, r.db)

	_, err := q.ExecContext(ctx,
		`DELETE FROM profile_enabled_dictionary WHERE profile = ? AND dictionary = ?`,
		id, dict)
	if err != nil {
		return mapError(err, id)
	}
	return nil
}

// CurrentProfile returns the process-wide current profile id.
func (r *Repo) CurrentProfile(ctx context.Context) (domain.ProfileID, error) {
	q := sqlite.QuerierFromCtx(ctx, r.db)

	var id domain.ProfileID
	if err := q.QueryRowContext(ctx,
		`SELECT current_profile FROM config WHERE id = 1`).Scan(&id); err != nil {
		return 0, fmt.Errorf("current profile: %w", err)
	}
	return id, nil
}

// SetCurrentProfile changes the process-wide current profile.
// Returns domain.ErrNotFound for a nonexistent profile id.
func (r *Repo) SetCurrentProfile(ctx context.Context, id domain.ProfileID) error {
	q := sqlite.QuerierFromCtx(ctx, r.db)

	if _, err := q.ExecContext(ctx,
		`UPDATE config SET current_profile = ? WHERE id = 1`, id); err != nil {
		return mapError(err, id)
	}
	return nil
}

func (r *Repo) update(ctx context.Context, id domain.ProfileID, query string, args ...any) error {
	q := sqlite.QuerierFromCtx(ctx, r.db)

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("profile update rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("profile %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) enabledSet(ctx context.Context, q sqlite.Querier, id domain.ProfileID) (map[domain.DictionaryID]struct{}, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT dictionary FROM profile_enabled_dictionary WHERE profile = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("enabled dictionaries for profile %d: %w", id, err)
	}
	defer rows.Close()

	set := map[domain.DictionaryID]struct{}{}
	for rows.Next() {
		var did domain.DictionaryID
		if err := rows.Scan(&did); err != nil {
			return nil, fmt.Errorf("scan enabled dictionary: %w", err)
		}
		set[did] = struct{}{}
	}
	return set, rows.Err()
}

func nullableName(name string) any {
	if name == "" {
		return nil
	}
	return name
}

func mapError(err error, id domain.ProfileID) error {
	return sqlite.MapError(err, "profile", id)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanOne(row *sql.Row) (*domain.Profile, error) { return scanProfile(row) }

func scanRows(rows *sql.Rows) (*domain.Profile, error) { return scanProfile(rows) }

func scanProfile(s scannable) (*domain.Profile, error) {
	var p domain.Profile
	var name sql.NullString
	var sorting sql.NullInt64
	if err := s.Scan(&p.ID, &name, &sorting, &p.Config.FontFamily,
		&p.Config.AnkiDeck, &p.Config.AnkiNoteType); err != nil {
		return nil, err
	}
	p.Name = name.String
	if sorting.Valid {
		v := sorting.Int64
		p.SortingDictionary = &v
	}
	return &p, nil
}
