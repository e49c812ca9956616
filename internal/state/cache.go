// Package state holds the hot read path: an atomically-published snapshot
// of dictionaries and profiles, the mutations that rebuild it, and the
// event bus that announces changes.
package state

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/marumori/jiten/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type dictionaryRepo interface {
	ListAll(ctx context.Context) ([]domain.Dictionary, error)
	Remove(ctx context.Context, id domain.DictionaryID) error
	SwapPositions(ctx context.Context, a, b domain.DictionaryID) error
}

type profileRepo interface {
	ListAll(ctx context.Context) ([]domain.Profile, error)
	Create(ctx context.Context, name string) (*domain.Profile, error)
	Copy(ctx context.Context, src domain.ProfileID, name string) (*domain.Profile, error)
	SetName(ctx context.Context, id domain.ProfileID, name string) error
	SetConfig(ctx context.Context, id domain.ProfileID, cfg domain.ProfileConfig) error
	SetSortingDictionary(ctx context.Context, id domain.ProfileID, dict *domain.DictionaryID) error
	Remove(ctx context.Context, id domain.ProfileID) error
	EnableDictionary(ctx context.Context, id domain.ProfileID, dict domain.DictionaryID) error
	DisableDictionary(ctx context.Context, id domain.ProfileID, dict domain.DictionaryID) error
	CurrentProfile(ctx context.Context) (domain.ProfileID, error)
	SetCurrentProfile(ctx context.Context, id domain.ProfileID) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Cache is the engine's hot state: readers load the current snapshot with a
// single atomic load and never block on writers; every mutation re-fetches
// the whole snapshot and swaps the pointer, then emits a typed event.
type Cache struct {
	log   *slog.Logger
	dicts dictionaryRepo
	profs profileRepo
	txm   txManager
	bus   *Bus

	snap atomic.Pointer[Snapshot]
}

// New creates the cache and performs the initial snapshot load.
func New(ctx context.Context, log *slog.Logger, dicts dictionaryRepo, profs profileRepo, txm txManager, bus *Bus) (*Cache, error) {
	c := &Cache{
		log:   log,
		dicts: dicts,
		profs: profs,
		txm:   txm,
		bus:   bus,
	}
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Snapshot returns the current snapshot. The result is immutable; hold it
// for as long as a consistent view is needed.
func (c *Cache) Snapshot() *Snapshot {
	return c.snap.Load()
}

// Bus returns the cache's event bus.
func (c *Cache) Bus() *Bus { return c.bus }

// Refresh re-fetches everything and atomically publishes a new snapshot.
func (c *Cache) Refresh(ctx context.Context) error {
	dicts, err := c.dicts.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("refresh dictionaries: %w", err)
	}
	profs, err := c.profs.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("refresh profiles: %w", err)
	}
	current, err := c.profs.CurrentProfile(ctx)
	if err != nil {
		return fmt.Errorf("refresh current profile: %w", err)
	}

	snap := &Snapshot{
		dictionaries: make(map[domain.DictionaryID]domain.Dictionary, len(dicts)),
		order:        make([]domain.DictionaryID, 0, len(dicts)),
		profiles:     make(map[domain.ProfileID]domain.Profile, len(profs)),
		current:      current,
	}
	for _, d := range dicts {
		snap.dictionaries[d.ID] = d
		snap.order = append(snap.order, d.ID)
	}
	for _, p := range profs {
		snap.profiles[p.ID] = p
	}

	c.snap.Store(snap)
	return nil
}

// ---------------------------------------------------------------------------
// Dictionary mutations
// ---------------------------------------------------------------------------

// EnableDictionary adds a dictionary to a profile's enabled set.
func (c *Cache) EnableDictionary(ctx context.Context, profile domain.ProfileID, dict domain.DictionaryID) error {
	if err := c.profs.EnableDictionary(ctx, profile, dict); err != nil {
		return err
	}
	return c.published(ctx, DictionaryEnabled{Profile: profile, Dictionary: dict})
}

// DisableDictionary removes a dictionary from a profile's enabled set. The
// dictionary itself stays imported and listed.
func (c *Cache) DisableDictionary(ctx context.Context, profile domain.ProfileID, dict domain.DictionaryID) error {
	if err := c.profs.DisableDictionary(ctx, profile, dict); err != nil {
		return err
	}
	return c.published(ctx, DictionaryDisabled{Profile: profile, Dictionary: dict})
}

// SwapDictionaryPositions exchanges the merge priority of two dictionaries.
func (c *Cache) SwapDictionaryPositions(ctx context.Context, a, b domain.DictionaryID) error {
	err := c.txm.RunInTx(ctx, func(ctx context.Context) error {
		return c.dicts.SwapPositions(ctx, a, b)
	})
	if err != nil {
		return err
	}
	return c.published(ctx, DictionaryPositionsSwapped{A: a, B: b})
}

// RemoveDictionary deletes a dictionary; its records and frequency rows
// cascade away. Returns domain.ErrNotFound for an unknown id.
func (c *Cache) RemoveDictionary(ctx context.Context, id domain.DictionaryID) error {
	if err := c.dicts.Remove(ctx, id); err != nil {
		return err
	}
	return c.published(ctx, DictionaryRemoved{ID: id})
}

// DictionaryImported refreshes the snapshot and announces a new dictionary.
// The importer calls it after its transaction commits.
func (c *Cache) DictionaryImported(ctx context.Context, id domain.DictionaryID) error {
	return c.published(ctx, DictionaryAdded{ID: id})
}

// ---------------------------------------------------------------------------
// Profile mutations
// ---------------------------------------------------------------------------

// AddProfile creates a profile with an empty enabled set.
func (c *Cache) AddProfile(ctx context.Context, name string) (*domain.Profile, error) {
	p, err := c.profs.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := c.published(ctx, ProfileAdded{ID: p.ID}); err != nil {
		return nil, err
	}
	return p, nil
}

// CopyProfile duplicates a profile's scalar config and enabled-dictionary
// set under a new identity, inside one transaction.
func (c *Cache) CopyProfile(ctx context.Context, src domain.ProfileID, name string) (*domain.Profile, error) {
	var p *domain.Profile
	err := c.txm.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = c.profs.Copy(ctx, src, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := c.published(ctx, ProfileCopied{Source: src, New: p.ID}); err != nil {
		return nil, err
	}
	return p, nil
}

// SetProfileName renames a profile.
func (c *Cache) SetProfileName(ctx context.Context, id domain.ProfileID, name string) error {
	if err := c.profs.SetName(ctx, id, name); err != nil {
		return err
	}
	return c.published(ctx, ProfileNameSet{ID: id})
}

// SetProfileConfig replaces a profile's scalar config.
func (c *Cache) SetProfileConfig(ctx context.Context, id domain.ProfileID, cfg domain.ProfileConfig) error {
	if err := c.profs.SetConfig(ctx, id, cfg); err != nil {
		return err
	}
	return c.published(ctx, ProfileConfigChanged{ID: id})
}

// SetSortingDictionary sets or clears (nil) the profile's sorting
// dictionary.
func (c *Cache) SetSortingDictionary(ctx context.Context, id domain.ProfileID, dict *domain.DictionaryID) error {
	if err := c.profs.SetSortingDictionary(ctx, id, dict); err != nil {
		return err
	}
	return c.published(ctx, SortingDictionarySet{Profile: id, Dictionary: dict})
}

// RemoveProfile deletes a profile. The current profile cannot be removed;
// select another one first.
func (c *Cache) RemoveProfile(ctx context.Context, id domain.ProfileID) error {
	if c.Snapshot().CurrentProfileID() == id {
		return domain.NewValidationError("profile", "cannot remove the current profile")
	}
	if err := c.profs.Remove(ctx, id); err != nil {
		return err
	}
	return c.published(ctx, ProfileRemoved{ID: id})
}

// SetCurrentProfile changes the process-wide current profile.
func (c *Cache) SetCurrentProfile(ctx context.Context, id domain.ProfileID) error {
	if err := c.profs.SetCurrentProfile(ctx, id); err != nil {
		return err
	}
	return c.published(ctx, CurrentProfileSet{ID: id})
}

// published refreshes the snapshot, then emits the event. Emission never
// blocks; refresh failure surfaces because a stale snapshot after a
// successful write would silently serve wrong results.
func (c *Cache) published(ctx context.Context, ev Event) error {
	if err := c.Refresh(ctx); err != nil {
		return err
	}
	c.bus.Publish(ev)
	return nil
}
