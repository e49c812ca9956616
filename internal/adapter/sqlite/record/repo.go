// Package record implements record and frequency persistence: batched
// import-time inserts and the ranked lookup query.
package record

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/marumori/jiten/internal/adapter/sqlite"
	"github.com/marumori/jiten/internal/domain"
)

// Repo provides record and frequency persistence.
type Repo struct {
	db *sql.DB
}

// New creates a new record repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// CountBySource returns the number of record rows for a dictionary.
func (r *Repo) CountBySource(ctx context.Context, source domain.DictionaryID) (int64, error) {
	q := sqlite.QuerierFromCtx(ctx, r.db)

	var n int64
	if err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM record WHERE source = ?`, source).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records for dictionary %d: %w", source, err)
	}
	return n, nil
}

func mapError(err error, id int64) error {
	return sqlite.MapError(err, "record", id)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
