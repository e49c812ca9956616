// Package lookup resolves sentences and direct lemmas to ranked,
// deduplicated dictionary records for the current profile.
package lookup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/marumori/jiten/internal/domain"
	"github.com/marumori/jiten/internal/state"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type recordRepo interface {
	LookupLemma(ctx context.Context, profile domain.ProfileID, sortingDict *domain.DictionaryID, lemma string, kinds []domain.RecordKind) ([]domain.LookupResult, error)
}

type deinflector interface {
	Deinflect(sentence string, cursor int) []domain.Deinflection
}

type snapshotter interface {
	Snapshot() *state.Snapshot
}

// Service is the query side of the engine. It reads the active profile
// from the state snapshot and never mutates anything.
type Service struct {
	log   *slog.Logger
	recs  recordRepo
	reg   deinflector
	state snapshotter
}

// New creates the lookup service.
func New(log *slog.Logger, recs recordRepo, reg deinflector, st snapshotter) *Service {
	return &Service{
		log:   log,
		recs:  recs,
		reg:   reg,
		state: st,
	}
}

// Deinflect returns the lemma candidates for the sentence position without
// hitting storage.
func (s *Service) Deinflect(sentence string, cursor int) []domain.Deinflection {
	return s.reg.Deinflect(sentence, cursor)
}

// Lookup deinflects the sentence at cursor and resolves each candidate
// lemma in candidate order, concatenating the per-lemma result lists.
// A sentence with no candidates yields an empty result, not an error.
func (s *Service) Lookup(ctx context.Context, sentence string, cursor int, kinds []domain.RecordKind) ([]domain.LookupResult, error) {
	candidates := s.reg.Deinflect(sentence, cursor)

	var out []domain.LookupResult
	for _, c := range candidates {
		results, err := s.LookupLemma(ctx, c.Lemma, kinds)
		if err != nil {
			return nil, fmt.Errorf("lookup lemma %q: %w", c.Lemma, err)
		}
		out = append(out, results...)
	}
	return out, nil
}

// LookupLemma queries records matching the lemma by headword or reading,
// restricted to the current profile's enabled dictionaries and the
// requested kinds, ranked by dictionary position and frequency.
func (s *Service) LookupLemma(ctx context.Context, lemma string, kinds []domain.RecordKind) ([]domain.LookupResult, error) {
	if lemma == "" {
		return nil, domain.NewValidationError("lemma", "must not be empty")
	}
	if len(kinds) == 0 {
		return nil, domain.NewValidationError("kinds", "must name at least one record kind")
	}
	for _, k := range kinds {
		if !k.IsValid() {
			return nil, domain.NewValidationError("kinds", fmt.Sprintf("unknown record kind %d", k))
		}
	}

	snap := s.state.Snapshot()
	profile := snap.CurrentProfileID()
	sorting := snap.SortingDictionary(profile)

	return s.recs.LookupLemma(ctx, profile, sorting, lemma, kinds)
}
