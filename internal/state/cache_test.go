package state_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/marumori/jiten/internal/adapter/sqlite"
	"github.com/marumori/jiten/internal/adapter/sqlite/dictionary"
	"github.com/marumori/jiten/internal/adapter/sqlite/profile"
	"github.com/marumori/jiten/internal/adapter/sqlite/testhelper"
	"github.com/marumori/jiten/internal/domain"
	"github.com/marumori/jiten/internal/state"
)

type fixture struct {
	cache *state.Cache
	dicts *dictionary.Repo
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testhelper.SetupTestDB(t)
	log := slog.New(slog.DiscardHandler)

	dicts := dictionary.New(db)
	profs := profile.New(db)
	txm := sqlite.NewTxManager(db)
	bus := state.NewBus(log, 16)

	cache, err := state.New(context.Background(), log, dicts, profs, txm, bus)
	if err != nil {
		t.Fatalf("state.New: %v", err)
	}
	return fixture{cache: cache, dicts: dicts}
}

func (f fixture) newDict(t *testing.T, name string) domain.DictionaryID {
	t.Helper()
	d, err := f.dicts.Create(context.Background(), domain.DictionaryMeta{Name: name})
	if err != nil {
		t.Fatalf("create dictionary %q: %v", name, err)
	}
	// Created behind the cache's back; pick it up explicitly.
	if err := f.cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	return d.ID
}

func TestCache_InitialSnapshot(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	snap := f.cache.Snapshot()
	if snap.CurrentProfileID() != 1 {
		t.Fatalf("expected seeded current profile 1, got %d", snap.CurrentProfileID())
	}
	if len(snap.Dictionaries()) != 0 {
		t.Fatalf("expected no dictionaries, got %d", len(snap.Dictionaries()))
	}
	if _, ok := snap.Profile(1); !ok {
		t.Fatal("expected seeded profile in snapshot")
	}
}

func TestCache_MutationSwapsSnapshot(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	before := f.cache.Snapshot()

	p, err := f.cache.AddProfile(ctx, "fresh")
	if err != nil {
		t.Fatalf("AddProfile: %v", err)
	}

	after := f.cache.Snapshot()
	if before == after {
		t.Fatal("mutation must publish a new snapshot pointer")
	}
	if _, ok := before.Profile(p.ID); ok {
		t.Error("old snapshot must not contain the new profile")
	}
	if _, ok := after.Profile(p.ID); !ok {
		t.Error("new snapshot must contain the new profile")
	}
}

func TestCache_EnableDisableDictionary(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	d := f.newDict(t, "toggle")

	if err := f.cache.EnableDictionary(ctx, 1, d); err != nil {
		t.Fatalf("EnableDictionary: %v", err)
	}
	enabled := f.cache.Snapshot().CurrentProfile()
	if !enabled.Enabled(d) {
		t.Fatal("snapshot should show the dictionary enabled")
	}

	if err := f.cache.DisableDictionary(ctx, 1, d); err != nil {
		t.Fatalf("DisableDictionary: %v", err)
	}
	snap := f.cache.Snapshot()
	disabled := snap.CurrentProfile()
	if disabled.Enabled(d) {
		t.Fatal("snapshot should show the dictionary disabled")
	}
	if _, ok := snap.Dictionary(d); !ok {
		t.Fatal("disabled dictionary should stay in the snapshot")
	}
}

func TestCache_SwapDictionaryPositions(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	a := f.newDict(t, "swap-a")
	b := f.newDict(t, "swap-b")

	if err := f.cache.SwapDictionaryPositions(ctx, a, b); err != nil {
		t.Fatalf("SwapDictionaryPositions: %v", err)
	}

	order := f.cache.Snapshot().Dictionaries()
	if len(order) != 2 || order[0].ID != b || order[1].ID != a {
		t.Fatalf("expected order [%d %d], got %+v", b, a, order)
	}
}

func TestCache_CopyProfile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	d := f.newDict(t, "copied")

	if err := f.cache.EnableDictionary(ctx, 1, d); err != nil {
		t.Fatalf("EnableDictionary: %v", err)
	}

	cp, err := f.cache.CopyProfile(ctx, 1, "clone")
	if err != nil {
		t.Fatalf("CopyProfile: %v", err)
	}

	got, ok := f.cache.Snapshot().Profile(cp.ID)
	if !ok {
		t.Fatal("copy missing from snapshot")
	}
	if !got.Enabled(d) {
		t.Error("copy should inherit the enabled set")
	}
}

func TestCache_RemoveProfile_CurrentRefused(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	err := f.cache.RemoveProfile(context.Background(), 1)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation removing the current profile, got %v", err)
	}
}

func TestCache_RemoveProfile_NotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	err := f.cache.RemoveProfile(context.Background(), 9999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCache_SetCurrentProfile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.cache.AddProfile(ctx, "next")
	if err != nil {
		t.Fatalf("AddProfile: %v", err)
	}
	if err := f.cache.SetCurrentProfile(ctx, p.ID); err != nil {
		t.Fatalf("SetCurrentProfile: %v", err)
	}
	if got := f.cache.Snapshot().CurrentProfileID(); got != p.ID {
		t.Fatalf("expected current profile %d, got %d", p.ID, got)
	}
}

func TestCache_SortingDictionary_DanglingIsNil(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	d := f.newDict(t, "ranks")

	if err := f.cache.SetSortingDictionary(ctx, 1, &d); err != nil {
		t.Fatalf("SetSortingDictionary: %v", err)
	}
	if got := f.cache.Snapshot().SortingDictionary(1); got == nil || *got != d {
		t.Fatalf("expected sorting dictionary %d, got %v", d, got)
	}

	if err := f.cache.RemoveDictionary(ctx, d); err != nil {
		t.Fatalf("RemoveDictionary: %v", err)
	}
	if got := f.cache.Snapshot().SortingDictionary(1); got != nil {
		t.Fatalf("expected nil after dictionary removal, got %d", *got)
	}
}

func TestCache_MutationsEmitEvents(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	ch, unsub := f.cache.Bus().Subscribe()
	defer unsub()

	p, err := f.cache.AddProfile(ctx, "evented")
	if err != nil {
		t.Fatalf("AddProfile: %v", err)
	}

	ev := <-ch
	added, ok := ev.(state.ProfileAdded)
	if !ok || added.ID != p.ID {
		t.Fatalf("expected ProfileAdded{%d}, got %#v", p.ID, ev)
	}
}
