// Package importer turns raw dictionary archives into committed rows:
// detect, parse, batch-insert in one transaction, announce the result.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/marumori/jiten/internal/adapter/sqlite/record"
	"github.com/marumori/jiten/internal/archive"
	"github.com/marumori/jiten/internal/domain"
	"github.com/marumori/jiten/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type dictionaryRepo interface {
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, meta domain.DictionaryMeta) (*domain.Dictionary, error)
}

type recordRepo interface {
	NewBatcher(ctx context.Context, source domain.DictionaryID, maxBinds int, onFlush func(ctx context.Context) error) *record.InsertBatcher
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type stateCache interface {
	DictionaryImported(ctx context.Context, id domain.DictionaryID) error
}

// Config bounds one importer instance.
type Config struct {
	// Concurrency caps how many imports parse and wait at once.
	Concurrency int64
	// MaxBoundParams is the per-statement bind budget for batched inserts.
	MaxBoundParams int
	// EventBuffer is the capacity of each job's event channel.
	EventBuffer int
}

// Service runs import jobs. Parsing proceeds concurrently up to the
// configured limit; the insert/commit section is serialized across jobs
// because the storage engine admits one writer at a time.
type Service struct {
	log   *slog.Logger
	dicts dictionaryRepo
	recs  recordRepo
	txm   txManager
	cache stateCache
	cfg   Config

	sem      *semaphore.Weighted
	insertMu sync.Mutex
}

// New creates the import service.
func New(log *slog.Logger, dicts dictionaryRepo, recs recordRepo, txm txManager, cache stateCache, cfg Config) *Service {
	return &Service{
		log:   log,
		dicts: dicts,
		recs:  recs,
		txm:   txm,
		cache: cache,
		cfg:   cfg,
		sem:   semaphore.NewWeighted(cfg.Concurrency),
	}
}

// Import starts an import job for the given archive bytes and returns its
// event stream. hint may be archive.KindUnknown to auto-detect. The job
// runs until done or until ctx is cancelled; cancellation rolls back and
// no partial dictionary is ever visible.
func (s *Service) Import(ctx context.Context, data []byte, hint archive.Kind) *Stream {
	st := newStream(s.cfg.EventBuffer)
	ctx = ctxutil.WithJobID(ctx, uuid.New())

	go func() {
		defer st.finish()

		id, err := s.run(ctx, data, hint, st)
		if err != nil {
			s.log.ErrorContext(ctx, "import failed", slog.Any("error", err))
			st.send(ctx, Err{Err: err})
			return
		}
		s.log.InfoContext(ctx, "import done", slog.Int64("dictionary", id))
		st.send(ctx, Done{ID: id})
	}()
	return st
}

func (s *Service) run(ctx context.Context, data []byte, hint archive.Kind, st *Stream) (domain.DictionaryID, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return 0, fmt.Errorf("acquire import slot: %w", err)
	}
	defer s.sem.Release(1)

	kind := hint
	if kind == archive.KindUnknown {
		var err error
		if kind, err = archive.Detect(data); err != nil {
			return 0, err
		}
	}
	st.send(ctx, DeterminedKind{Kind: kind})

	parser, err := archive.ParserFor(kind)
	if err != nil {
		return 0, err
	}
	meta, entries, err := parser.Parse(data)
	if err != nil {
		return 0, fmt.Errorf("parse %s archive: %w", kind, err)
	}
	st.send(ctx, ParsedMeta{Meta: meta})
	s.log.InfoContext(ctx, "archive parsed",
		slog.String("kind", kind.String()),
		slog.String("name", meta.Name))

	exists, err := s.dicts.ExistsByName(ctx, meta.Name)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, fmt.Errorf("dictionary %q: %w", meta.Name, domain.ErrAlreadyExists)
	}

	s.insertMu.Lock()
	defer s.insertMu.Unlock()

	var id domain.DictionaryID
	err = s.txm.RunInTx(ctx, func(ctx context.Context) error {
		dict, err := s.dicts.Create(ctx, meta)
		if err != nil {
			return err
		}
		id = dict.ID

		b := s.recs.NewBatcher(ctx, dict.ID, s.cfg.MaxBoundParams, func(ctx context.Context) error {
			st.send(ctx, Progress{Frac: entries.Frac()})
			return ctx.Err()
		})
		if err := s.insertAll(ctx, b, entries); err != nil {
			return err
		}
		if b.Inserted() == 0 {
			return fmt.Errorf("dictionary %q: %w", meta.Name, domain.ErrNoRecords)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := s.cache.DictionaryImported(ctx, id); err != nil {
		return 0, err
	}
	return id, nil
}

// insertAll drains the entry stream into the batcher. Frequency payloads
// are stored twice: as a record like every other kind, and as a row in the
// ranking table.
func (s *Service) insertAll(ctx context.Context, b *record.InsertBatcher, entries archive.EntryReader) error {
	for {
		e, err := entries.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read archive entry: %w", err)
		}

		data, err := domain.EncodePayload(e.Payload)
		if err != nil {
			return err
		}
		if err := b.AddRecord(ctx, e.Term, e.Payload.Kind(), data); err != nil {
			return err
		}
		if f, ok := e.Payload.(domain.Frequency); ok {
			if err := b.AddFrequency(ctx, e.Term, f.Mode, f.Value); err != nil {
				return err
			}
		}
	}
	return b.Flush(ctx)
}
