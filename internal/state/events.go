package state

import (
	"log/slog"
	"sync"

	"github.com/marumori/jiten/internal/domain"
)

// Event is a change notification emitted after a successful mutation. The
// set of event types is closed.
type Event interface{ isEvent() }

type DictionaryAdded struct{ ID domain.DictionaryID }

type DictionaryRemoved struct{ ID domain.DictionaryID }

type DictionaryPositionsSwapped struct{ A, B domain.DictionaryID }

type DictionaryEnabled struct {
	Profile    domain.ProfileID
	Dictionary domain.DictionaryID
}

type DictionaryDisabled struct {
	Profile    domain.ProfileID
	Dictionary domain.DictionaryID
}

type ProfileAdded struct{ ID domain.ProfileID }

type ProfileCopied struct{ Source, New domain.ProfileID }

type ProfileRemoved struct{ ID domain.ProfileID }

type ProfileNameSet struct{ ID domain.ProfileID }

type ProfileConfigChanged struct{ ID domain.ProfileID }

type SortingDictionarySet struct {
	Profile    domain.ProfileID
	Dictionary *domain.DictionaryID
}

type CurrentProfileSet struct{ ID domain.ProfileID }

func (DictionaryAdded) isEvent()            {}
func (DictionaryRemoved) isEvent()          {}
func (DictionaryPositionsSwapped) isEvent() {}
func (DictionaryEnabled) isEvent()          {}
func (DictionaryDisabled) isEvent()         {}
func (ProfileAdded) isEvent()               {}
func (ProfileCopied) isEvent()              {}
func (ProfileRemoved) isEvent()             {}
func (ProfileNameSet) isEvent()             {}
func (ProfileConfigChanged) isEvent()       {}
func (SortingDictionarySet) isEvent()       {}
func (CurrentProfileSet) isEvent()          {}

// Bus broadcasts events to subscribers. Publishing never blocks the
// mutator: a subscriber whose buffer is full loses the event (counted and
// logged) rather than slowing everyone down.
type Bus struct {
	mu      sync.Mutex
	subs    map[int]chan Event
	nextID  int
	bufSize int
	dropped int64
	log     *slog.Logger
}

// NewBus creates a Bus with the given per-subscriber buffer capacity.
func NewBus(log *slog.Logger, bufSize int) *Bus {
	return &Bus{
		subs:    make(map[int]chan Event),
		bufSize: bufSize,
		log:     log,
	}
}

// Subscribe registers a new subscriber and returns its event channel plus an
// unsubscribe function. The channel is closed on unsubscribe.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.bufSize)
	b.subs[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, unsubscribe
}

// Publish delivers the event to every subscriber without blocking.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.dropped++
			b.log.Warn("event dropped for lagging subscriber",
				slog.Int("subscriber", id),
				slog.Int64("total_dropped", b.dropped),
			)
		}
	}
}

// Dropped returns the total number of events dropped across subscribers.
func (b *Bus) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
