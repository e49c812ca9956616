// Package app assembles the engine: storage, state cache, deinflection
// strategies, and the import and lookup services behind one facade.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/marumori/jiten/internal/adapter/sqlite"
	"github.com/marumori/jiten/internal/adapter/sqlite/dictionary"
	"github.com/marumori/jiten/internal/adapter/sqlite/profile"
	"github.com/marumori/jiten/internal/adapter/sqlite/record"
	"github.com/marumori/jiten/internal/archive"
	"github.com/marumori/jiten/internal/config"
	"github.com/marumori/jiten/internal/deinflect"
	"github.com/marumori/jiten/internal/domain"
	"github.com/marumori/jiten/internal/service/importer"
	"github.com/marumori/jiten/internal/service/lookup"
	"github.com/marumori/jiten/internal/state"
)

// Engine is the single entry point for front ends: imports, lookups,
// dictionary and profile management, and change notifications.
type Engine struct {
	log      *slog.Logger
	db       *sql.DB
	cache    *state.Cache
	registry *deinflect.Registry
	importer *importer.Service
	lookup   *lookup.Service
}

// New opens the database, runs migrations, loads the initial state
// snapshot, and wires the services. Close the returned engine when done.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*Engine, error) {
	db, err := sqlite.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	txm := sqlite.NewTxManager(db)
	dicts := dictionary.New(db)
	profs := profile.New(db)
	recs := record.New(db)

	bus := state.NewBus(log, cfg.Events.SubscriberBuffer)
	cache, err := state.New(ctx, log, dicts, profs, txm, bus)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}

	strategies := []deinflect.Deinflector{
		deinflect.Identity{},
		deinflect.LatinCasing{},
	}
	kagome, err := deinflect.NewKagome()
	if err != nil {
		// Lookups still work through the other strategies.
		log.Warn("morphological analyzer unavailable", slog.Any("error", err))
	} else {
		strategies = append(strategies, deinflect.NewMorphological(kagome))
	}
	registry := deinflect.NewRegistry(log, strategies...)

	imp := importer.New(log, dicts, recs, txm, cache, importer.Config{
		Concurrency:    int64(cfg.Import.Concurrency),
		MaxBoundParams: cfg.Import.MaxBoundParams,
		EventBuffer:    cfg.Import.EventBuffer,
	})
	lk := lookup.New(log, recs, registry, cache)

	return &Engine{
		log:      log,
		db:       db,
		cache:    cache,
		registry: registry,
		importer: imp,
		lookup:   lk,
	}, nil
}

// Close releases the database pool.
func (e *Engine) Close() error {
	return e.db.Close()
}

// ---------------------------------------------------------------------------
// Import
// ---------------------------------------------------------------------------

// ImportDictionary starts an import job for the archive bytes and returns
// its event stream. hint may be archive.KindUnknown to auto-detect.
func (e *Engine) ImportDictionary(ctx context.Context, data []byte, hint archive.Kind) *importer.Stream {
	return e.importer.Import(ctx, data, hint)
}

// ---------------------------------------------------------------------------
// Lookup
// ---------------------------------------------------------------------------

// Lookup deinflects the sentence at cursor and resolves each candidate
// lemma against the current profile's enabled dictionaries.
func (e *Engine) Lookup(ctx context.Context, sentence string, cursor int, kinds []domain.RecordKind) ([]domain.LookupResult, error) {
	return e.lookup.Lookup(ctx, sentence, cursor, kinds)
}

// LookupLemma resolves a single lemma directly.
func (e *Engine) LookupLemma(ctx context.Context, lemma string, kinds []domain.RecordKind) ([]domain.LookupResult, error) {
	return e.lookup.LookupLemma(ctx, lemma, kinds)
}

// Deinflect returns the lemma candidates for the sentence position.
func (e *Engine) Deinflect(sentence string, cursor int) []domain.Deinflection {
	return e.registry.Deinflect(sentence, cursor)
}

// ---------------------------------------------------------------------------
// State
// ---------------------------------------------------------------------------

// Snapshot returns the current immutable view of dictionaries and profiles.
func (e *Engine) Snapshot() *state.Snapshot {
	return e.cache.Snapshot()
}

// Subscribe returns a channel of change events and an unsubscribe function.
func (e *Engine) Subscribe() (<-chan state.Event, func()) {
	return e.cache.Bus().Subscribe()
}

// ---------------------------------------------------------------------------
// Dictionary management
// ---------------------------------------------------------------------------

// EnableDictionary adds a dictionary to a profile's enabled set.
func (e *Engine) EnableDictionary(ctx context.Context, profile domain.ProfileID, dict domain.DictionaryID) error {
	return e.cache.EnableDictionary(ctx, profile, dict)
}

// DisableDictionary removes a dictionary from a profile's enabled set.
func (e *Engine) DisableDictionary(ctx context.Context, profile domain.ProfileID, dict domain.DictionaryID) error {
	return e.cache.DisableDictionary(ctx, profile, dict)
}

// SwapDictionaryPositions exchanges the priority of two dictionaries.
func (e *Engine) SwapDictionaryPositions(ctx context.Context, a, b domain.DictionaryID) error {
	return e.cache.SwapDictionaryPositions(ctx, a, b)
}

// RemoveDictionary deletes a dictionary and all its records.
func (e *Engine) RemoveDictionary(ctx context.Context, id domain.DictionaryID) error {
	return e.cache.RemoveDictionary(ctx, id)
}

// ---------------------------------------------------------------------------
// Profile management
// ---------------------------------------------------------------------------

// AddProfile creates a profile with an empty enabled set.
func (e *Engine) AddProfile(ctx context.Context, name string) (*domain.Profile, error) {
	return e.cache.AddProfile(ctx, name)
}

// CopyProfile duplicates a profile's config and enabled set under a new name.
func (e *Engine) CopyProfile(ctx context.Context, src domain.ProfileID, name string) (*domain.Profile, error) {
	return e.cache.CopyProfile(ctx, src, name)
}

// SetProfileName renames a profile.
func (e *Engine) SetProfileName(ctx context.Context, id domain.ProfileID, name string) error {
	return e.cache.SetProfileName(ctx, id, name)
}

// SetProfileConfig replaces a profile's scalar config.
func (e *Engine) SetProfileConfig(ctx context.Context, id domain.ProfileID, cfg domain.ProfileConfig) error {
	return e.cache.SetProfileConfig(ctx, id, cfg)
}

// SetSortingDictionary sets or clears (nil) a profile's sorting dictionary.
func (e *Engine) SetSortingDictionary(ctx context.Context, id domain.ProfileID, dict *domain.DictionaryID) error {
	return e.cache.SetSortingDictionary(ctx, id, dict)
}

// RemoveProfile deletes a profile. The current profile cannot be removed.
func (e *Engine) RemoveProfile(ctx context.Context, id domain.ProfileID) error {
	return e.cache.RemoveProfile(ctx, id)
}

// SetCurrentProfile changes the active profile.
func (e *Engine) SetCurrentProfile(ctx context.Context, id domain.ProfileID) error {
	return e.cache.SetCurrentProfile(ctx, id)
}
