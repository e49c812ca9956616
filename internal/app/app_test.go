package app_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marumori/jiten/internal/app"
	"github.com/marumori/jiten/internal/archive"
	"github.com/marumori/jiten/internal/archive/archivetest"
	"github.com/marumori/jiten/internal/config"
	"github.com/marumori/jiten/internal/domain"
	"github.com/marumori/jiten/internal/service/importer"
	"github.com/marumori/jiten/internal/state"
)

func setupEngine(t *testing.T) *app.Engine {
	t.Helper()

	cfg := config.Config{
		Database: config.DatabaseConfig{
			Path:        filepath.Join(t.TempDir(), "engine.db"),
			MaxConns:    4,
			BusyTimeout: 5 * time.Second,
		},
		Import: config.ImportConfig{Concurrency: 2, MaxBoundParams: 999, EventBuffer: 16},
		Events: config.EventsConfig{SubscriberBuffer: 32},
		Log:    config.LogConfig{Level: "error", Format: "text"},
	}

	engine, err := app.New(context.Background(), cfg, app.NewLogger(cfg.Log))
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return engine
}

func importArchive(t *testing.T, engine *app.Engine, data []byte) domain.DictionaryID {
	t.Helper()

	stream := engine.ImportDictionary(context.Background(), data, archive.KindUnknown)
	for ev := range stream.Events() {
		switch e := ev.(type) {
		case importer.Done:
			return e.ID
		case importer.Err:
			t.Fatalf("import failed: %v", e.Err)
		}
	}
	t.Fatal("stream closed without a terminal event")
	return 0
}

func TestEngine_ImportLookupLifecycle(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	events, unsub := engine.Subscribe()
	defer unsub()

	data := archivetest.Build(t,
		archivetest.Index{Title: "Lifecycle", Revision: "1", Format: 3},
		archivetest.File{Name: "term_bank_1.json", Rows: []any{
			archivetest.TermRow("読む", "よむ", "to read"),
		}},
		archivetest.File{Name: "term_meta_bank_1.json", Rows: []any{
			archivetest.FreqRow("読む", 120),
		}},
	)
	dictID := importArchive(t, engine, data)

	ev := <-events
	require.IsType(t, state.DictionaryAdded{}, ev)
	assert.Equal(t, dictID, ev.(state.DictionaryAdded).ID)

	snap := engine.Snapshot()
	d, ok := snap.Dictionary(dictID)
	require.True(t, ok)
	assert.Equal(t, "Lifecycle", d.Meta.Name)

	// Nothing is enabled yet, so the lookup comes back empty.
	profileID := snap.CurrentProfileID()
	results, err := engine.LookupLemma(ctx, "読む", []domain.RecordKind{domain.KindGlossary})
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, engine.EnableDictionary(ctx, profileID, dictID))
	require.NoError(t, engine.SetSortingDictionary(ctx, profileID, &dictID))

	results, err = engine.LookupLemma(ctx, "読む", []domain.RecordKind{domain.KindGlossary})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "読む", results[0].Record.Term.Headword)
	require.NotNil(t, results[0].Frequency)
	assert.EqualValues(t, 120, results[0].Frequency.Value)

	// Dictionary removal cascades records and empties the lookup again.
	require.NoError(t, engine.RemoveDictionary(ctx, dictID))
	results, err = engine.LookupLemma(ctx, "読む", []domain.RecordKind{domain.KindGlossary})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEngine_SentenceLookupThroughDeinflection(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	data := archivetest.BuildSimple(t, "Verbs",
		archivetest.TermRow("読む", "よむ", "to read"))
	dictID := importArchive(t, engine, data)
	require.NoError(t, engine.EnableDictionary(ctx, engine.Snapshot().CurrentProfileID(), dictID))

	// The conjugated form resolves through the morphological strategy.
	results, err := engine.Lookup(ctx, "読んだ", 0, []domain.RecordKind{domain.KindGlossary})
	require.NoError(t, err)
	require.NotEmpty(t, results, "読んだ should deinflect to 読む")
	assert.Equal(t, "読む", results[0].Record.Term.Headword)
}

func TestEngine_ProfileLifecycle(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	data := archivetest.BuildSimple(t, "Shared", archivetest.TermRow("word", "", "def"))
	dictID := importArchive(t, engine, data)

	base := engine.Snapshot().CurrentProfileID()
	require.NoError(t, engine.EnableDictionary(ctx, base, dictID))

	clone, err := engine.CopyProfile(ctx, base, "clone")
	require.NoError(t, err)
	assert.True(t, clone.Enabled(dictID), "copy inherits the enabled set")

	require.NoError(t, engine.SetProfileName(ctx, clone.ID, "renamed"))
	require.NoError(t, engine.SetProfileConfig(ctx, clone.ID, domain.ProfileConfig{
		FontFamily: "Noto Serif",
		AnkiDeck:   "Mining",
	}))

	got, ok := engine.Snapshot().Profile(clone.ID)
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, "Noto Serif", got.Config.FontFamily)

	// Switching the current profile redirects lookups to its enabled set.
	require.NoError(t, engine.SetCurrentProfile(ctx, clone.ID))
	results, err := engine.LookupLemma(ctx, "word", []domain.RecordKind{domain.KindGlossary})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	// The current profile cannot be removed; the old one can.
	err = engine.RemoveProfile(ctx, clone.ID)
	require.ErrorIs(t, err, domain.ErrValidation)
	require.NoError(t, engine.SetCurrentProfile(ctx, base))
	require.NoError(t, engine.RemoveProfile(ctx, clone.ID))
}
