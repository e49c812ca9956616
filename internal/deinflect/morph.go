package deinflect

import "github.com/marumori/jiten/internal/domain"

// Analyzer derives a dictionary-form lemma from the leading conjugated form
// of text. Implementations are external collaborators: a failed analysis is
// "no candidate", never an error.
type Analyzer interface {
	// Analyze returns the lemma and the byte length of the surface form it
	// was derived from. ok is false when no lemma could be produced.
	Analyze(text string) (lemma string, surfaceLen int, ok bool)
}

// Morphological adapts an Analyzer into a deinflection strategy for
// agglutinative-language text.
type Morphological struct {
	analyzer Analyzer
}

// NewMorphological wraps the analyzer.
func NewMorphological(a Analyzer) *Morphological {
	return &Morphological{analyzer: a}
}

func (m *Morphological) Deinflect(sentence string, cursor int) []domain.Deinflection {
	lemma, surfaceLen, ok := m.analyzer.Analyze(sentence[cursor:])
	if !ok {
		return nil
	}
	return []domain.Deinflection{{
		Span:  domain.Span{Start: cursor, End: cursor + surfaceLen},
		Lemma: lemma,
	}}
}
