// Package deinflect recovers dictionary-form lemma candidates from inflected
// surface forms found in running text. Strategies are pluggable; the
// registry composes them and never fails as a whole — a strategy with no
// candidate simply yields nothing.
package deinflect

import (
	"log/slog"

	"github.com/marumori/jiten/internal/domain"
)

// Deinflector produces zero or more (span, lemma) candidates for the text at
// and after cursor, a byte offset into sentence.
type Deinflector interface {
	Deinflect(sentence string, cursor int) []domain.Deinflection
}

// Registry composes deinflection strategies: candidates are concatenated in
// strategy order, then deduplicated by lemma text with the first span
// winning. Candidates with spans that are not valid substring ranges of the
// sentence are dropped and logged, never returned.
type Registry struct {
	strategies []Deinflector
	log        *slog.Logger
}

// NewRegistry creates a Registry over the given strategies.
func NewRegistry(log *slog.Logger, strategies ...Deinflector) *Registry {
	return &Registry{strategies: strategies, log: log}
}

// Deinflect runs every strategy and returns the deduplicated candidates.
// An out-of-range cursor yields no candidates.
func (r *Registry) Deinflect(sentence string, cursor int) []domain.Deinflection {
	if cursor < 0 || cursor >= len(sentence) {
		return nil
	}

	var out []domain.Deinflection
	seen := map[string]struct{}{}
	for _, s := range r.strategies {
		for _, d := range s.Deinflect(sentence, cursor) {
			if d.Lemma == "" {
				continue
			}
			if !d.Span.ValidFor(sentence) {
				r.log.Warn("deinflector produced invalid span",
					slog.Int("start", d.Span.Start),
					slog.Int("end", d.Span.End),
					slog.Int("sentence_len", len(sentence)),
				)
				continue
			}
			if _, dup := seen[d.Lemma]; dup {
				continue
			}
			seen[d.Lemma] = struct{}{}
			out = append(out, d)
		}
	}
	return out
}
