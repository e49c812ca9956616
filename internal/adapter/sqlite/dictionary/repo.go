// Package dictionary implements the dictionary repository: identity,
// metadata and the position column that defines merge priority.
package dictionary

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/marumori/jiten/internal/adapter/sqlite"
	"github.com/marumori/jiten/internal/domain"
)

// Repo provides dictionary persistence.
type Repo struct {
	db *sql.DB
}

// New creates a new dictionary repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

var columns = []string{"id", "position", "name", "version", "description", "url"}

// GetByID returns a dictionary by id. Returns domain.ErrNotFound if absent.
func (r *Repo) GetByID(ctx context.Context, id domain.DictionaryID) (*domain.Dictionary, error) {
	q := sqlite.QuerierFromCtx(ctx, r.db)

	query, args, err := sq.Select(columns...).
		From("dictionary").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build dictionary query: %w", err)
	}

	d, err := scanOne(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, id)
	}
	return d, nil
}

// ExistsByName reports whether a dictionary with the given name exists.
// The importer uses it for the duplicate-name check before committing.
func (r *Repo) ExistsByName(ctx context.Context, name string) (bool, error) {
	q := sqlite.QuerierFromCtx(ctx, r.db)

	var one int
	err := q.QueryRowContext(ctx,
		`SELECT 1 FROM dictionary WHERE name = ?`, name).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("dictionary exists by name: %w", err)
	}
	return true, nil
}

// ListAll returns every dictionary ordered by position ascending.
func (r *Repo) ListAll(ctx context.Context) ([]domain.Dictionary, error) {
	q := sqlite.QuerierFromCtx(ctx, r.db)

	query, args, err := sq.Select(columns...).
		From("dictionary").
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build dictionary list query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list dictionaries: %w", err)
	}
	defer rows.Close()

	var out []domain.Dictionary
	for rows.Next() {
		var d domain.Dictionary
		if err := rows.Scan(&d.ID, &d.Position, &d.Meta.Name, &d.Meta.Version,
			&d.Meta.Description, &d.Meta.URL); err != nil {
			return nil, fmt.Errorf("scan dictionary: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Create inserts a dictionary at position current-max+1 and returns it with
// its assigned id. Returns domain.ErrAlreadyExists on a duplicate name.
func (r *Repo) Create(ctx context.Context, meta domain.DictionaryMeta) (*domain.Dictionary, error) {
	q := sqlite.QuerierFromCtx(ctx, r.db)

	res, err := q.ExecContext(ctx,
		`INSERT INTO dictionary (position, name, version, description, url)
		 VALUES ((SELECT COALESCE(MAX(position), -1) + 1 FROM dictionary), ?, ?, ?, ?)`,
		meta.Name, meta.Version, meta.Description, meta.URL)
	if err != nil {
		return nil, mapError(err, 0)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("dictionary insert id: %w", err)
	}

	return r.GetByID(ctx, id)
}

// Remove deletes a dictionary; record and frequency rows cascade.
// Returns domain.ErrNotFound if the id does not exist.
func (r *Repo) Remove(ctx context.Context, id domain.DictionaryID) error {
	q := sqlite.QuerierFromCtx(ctx, r.db)

	res, err := q.ExecContext(ctx, `DELETE FROM dictionary WHERE id = ?`, id)
	if err != nil {
		return mapError(err, id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("dictionary delete rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("dictionary %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SwapPositions exchanges the positions of two dictionaries. Must run inside
// a transaction: the unique position constraint forces a three-step swap
// through a temporary negative position.
func (r *Repo) SwapPositions(ctx context.Context, a, b domain.DictionaryID) error {
	q := sqlite.QuerierFromCtx(ctx, r.db)

	posA, err := r.position(ctx, q, a)
	if err != nil {
		return err
	}
	posB, err := r.position(ctx, q, b)
	if err != nil {
		return err
	}

	steps := []struct {
		pos int64
		id  domain.DictionaryID
	}{
		{-1, a},
		{posA, b},
		{posB, a},
	}
	for _, s := range steps {
		if _, err := q.ExecContext(ctx,
			`UPDATE dictionary SET position = ? WHERE id = ?`, s.pos, s.id); err != nil {
			return mapError(err, s.id)
		}
	}
	return nil
}

func (r *Repo) position(ctx context.Context, q sqlite.Querier, id domain.DictionaryID) (int64, error) {
	var pos int64
	if err := q.QueryRowContext(ctx,
		`SELECT position FROM dictionary WHERE id = ?`, id).Scan(&pos); err != nil {
		return 0, mapError(err, id)
	}
	return pos, nil
}

func mapError(err error, id domain.DictionaryID) error {
	return sqlite.MapError(err, "dictionary", id)
}

func scanOne(row *sql.Row) (*domain.Dictionary, error) {
	var d domain.Dictionary
	if err := row.Scan(&d.ID, &d.Position, &d.Meta.Name, &d.Meta.Version,
		&d.Meta.Description, &d.Meta.URL); err != nil {
		return nil, err
	}
	return &d, nil
}
