package importer

import (
	"context"
	"sync"

	"github.com/marumori/jiten/internal/archive"
	"github.com/marumori/jiten/internal/domain"
)

// Event is one item of an import job's event stream. The stream is
// ordered: DeterminedKind, then ParsedMeta, then zero or more Progress,
// then exactly one of Done or Err, after which the stream is closed.
type Event interface {
	importEvent()
}

// DeterminedKind reports the detected archive format.
type DeterminedKind struct {
	Kind archive.Kind
}

// ParsedMeta reports the dictionary metadata read from the archive.
type ParsedMeta struct {
	Meta domain.DictionaryMeta
}

// Progress reports a monotonically non-decreasing fraction in [0, 1],
// emitted after each flushed insert batch.
type Progress struct {
	Frac float64
}

// Done is the terminal event of a successful import.
type Done struct {
	ID domain.DictionaryID
}

// Err is the terminal event of a failed import.
type Err struct {
	Err error
}

func (DeterminedKind) importEvent() {}
func (ParsedMeta) importEvent()     {}
func (Progress) importEvent()       {}
func (Done) importEvent()           {}
func (Err) importEvent()            {}

// Stream delivers one import job's events over a bounded channel. A slow
// consumer applies backpressure to the job; a consumer that walks away must
// call Close, after which further events are silently discarded and the job
// runs to completion on its own.
type Stream struct {
	ch   chan Event
	gone chan struct{}
	once sync.Once
}

func newStream(buf int) *Stream {
	return &Stream{
		ch:   make(chan Event, buf),
		gone: make(chan struct{}),
	}
}

// Events returns the receive side of the stream. It is closed after the
// terminal event.
func (s *Stream) Events() <-chan Event { return s.ch }

// Close marks the consumer gone. The import itself is not cancelled.
func (s *Stream) Close() {
	s.once.Do(func() { close(s.gone) })
}

func (s *Stream) send(ctx context.Context, ev Event) {
	select {
	case <-s.gone:
		return
	default:
	}
	select {
	case s.ch <- ev:
	case <-s.gone:
	case <-ctx.Done():
	}
}

func (s *Stream) finish() { close(s.ch) }
