// Package testhelper provides a migrated throwaway database for repository
// and service tests.
package testhelper

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/marumori/jiten/internal/adapter/sqlite"
	"github.com/marumori/jiten/internal/config"
)

// SetupTestDB creates a fresh SQLite database file under t.TempDir(),
// applies goose migrations, and returns the pool. The pool is closed via
// t.Cleanup; the file goes away with the temp dir.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		MaxConns:    4,
		BusyTimeout: 5 * time.Second,
	}

	db, err := sqlite.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("testhelper: failed to setup test DB: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
