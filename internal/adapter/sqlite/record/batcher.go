package record

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/marumori/jiten/internal/adapter/sqlite"
	"github.com/marumori/jiten/internal/domain"
)

const (
	recordBinds    = 5 // source, kind, headword, reading, data
	frequencyBinds = 5 // source, headword, reading, mode, value
)

// Execer is the statement-execution subset of sqlite.Querier.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertBatcher accumulates record and frequency rows for one dictionary and
// executes them as multi-row INSERT statements. A pending statement is
// flushed before its running bind count would exceed the configured budget,
// keeping every statement within the engine's bound-parameter limit while
// minimizing round-trips.
//
// The batcher issues statements against the querier it was built with; run
// it inside a transaction for all-or-nothing imports.
type InsertBatcher struct {
	q         Execer
	source    domain.DictionaryID
	maxBinds  int
	onFlush   func(ctx context.Context) error
	records   sq.InsertBuilder
	nRecBinds int
	freqs     sq.InsertBuilder
	nFrqBinds int
	flushes   int
	inserted  int64
}

// NewBatcher creates an InsertBatcher for one dictionary, bound to the
// transaction in ctx (or the pool when none). onFlush, if non-nil, runs
// after every executed statement — the importer hooks progress reporting
// here; an onFlush error aborts the batch.
func (r *Repo) NewBatcher(ctx context.Context, source domain.DictionaryID, maxBinds int, onFlush func(ctx context.Context) error) *InsertBatcher {
	b := &InsertBatcher{
		q:        sqlite.QuerierFromCtx(ctx, r.db),
		source:   source,
		maxBinds: maxBinds,
		onFlush:  onFlush,
	}
	b.resetRecords()
	b.resetFreqs()
	return b
}

func (b *InsertBatcher) resetRecords() {
	b.records = sq.Insert("record").Columns("source", "kind", "headword", "reading", "data")
	b.nRecBinds = 0
}

func (b *InsertBatcher) resetFreqs() {
	b.freqs = sq.Insert("frequency").Columns("source", "headword", "reading", "mode", "value")
	b.nFrqBinds = 0
}

// AddRecord queues one record row, flushing the pending record statement
// first if the row would push it past the bind budget.
func (b *InsertBatcher) AddRecord(ctx context.Context, term domain.Term, kind domain.RecordKind, data []byte) error {
	if b.nRecBinds+recordBinds > b.maxBinds {
		if err := b.flushRecords(ctx); err != nil {
			return err
		}
	}
	b.records = b.records.Values(b.source, kind, nullable(term.Headword), nullable(term.Reading), data)
	b.nRecBinds += recordBinds
	return nil
}

// AddFrequency queues one frequency row, flushing the pending frequency
// statement first if the row would push it past the bind budget.
func (b *InsertBatcher) AddFrequency(ctx context.Context, term domain.Term, mode domain.FrequencyMode, value int64) error {
	if b.nFrqBinds+frequencyBinds > b.maxBinds {
		if err := b.flushFreqs(ctx); err != nil {
			return err
		}
	}
	b.freqs = b.freqs.Values(b.source, nullable(term.Headword), nullable(term.Reading), mode, value)
	b.nFrqBinds += frequencyBinds
	return nil
}

// Flush executes any pending statements.
func (b *InsertBatcher) Flush(ctx context.Context) error {
	if err := b.flushRecords(ctx); err != nil {
		return err
	}
	return b.flushFreqs(ctx)
}

// Flushes returns the number of statements executed so far.
func (b *InsertBatcher) Flushes() int { return b.flushes }

// Inserted returns the number of record rows inserted so far (frequency rows
// not counted).
func (b *InsertBatcher) Inserted() int64 { return b.inserted }

func (b *InsertBatcher) flushRecords(ctx context.Context) error {
	if b.nRecBinds == 0 {
		return nil
	}
	rows := int64(b.nRecBinds / recordBinds)
	if err := b.exec(ctx, b.records); err != nil {
		return err
	}
	b.inserted += rows
	b.resetRecords()
	return b.flushed(ctx)
}

func (b *InsertBatcher) flushFreqs(ctx context.Context) error {
	if b.nFrqBinds == 0 {
		return nil
	}
	if err := b.exec(ctx, b.freqs); err != nil {
		return err
	}
	b.resetFreqs()
	return b.flushed(ctx)
}

func (b *InsertBatcher) exec(ctx context.Context, ins sq.InsertBuilder) error {
	query, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := b.q.ExecContext(ctx, query, args...); err != nil {
		return mapError(err, b.source)
	}
	return nil
}

func (b *InsertBatcher) flushed(ctx context.Context) error {
	b.flushes++
	if b.onFlush == nil {
		return nil
	}
	return b.onFlush(ctx)
}
