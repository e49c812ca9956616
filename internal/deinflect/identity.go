package deinflect

import "github.com/marumori/jiten/internal/domain"

// Identity yields the remaining substring from cursor to end-of-sentence,
// verbatim. It anchors every lookup: an already-canonical form needs no
// deinflection.
type Identity struct{}

func (Identity) Deinflect(sentence string, cursor int) []domain.Deinflection {
	rest := sentence[cursor:]
	if rest == "" {
		return nil
	}
	return []domain.Deinflection{{
		Span:  domain.Span{Start: cursor, End: len(sentence)},
		Lemma: rest,
	}}
}
