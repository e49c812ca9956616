package domain

// Deinflection is a candidate dictionary-form lemma recovered from running
// text, together with the byte span of the surface form it was derived from.
// Deinflections are transient: produced per lookup call, never persisted.
// Two deinflections are the same candidate iff their lemmas are equal; the
// first span wins on duplicate lemmas.
type Deinflection struct {
	// Span is the [Start, End) byte range into the queried sentence.
	Span Span
	// Lemma is the dictionary form to look up.
	Lemma string
}

// Span is a half-open byte range [Start, End).
type Span struct {
	Start int
	End   int
}

// ValidFor reports whether the span is a valid substring range of s.
func (sp Span) ValidFor(s string) bool {
	return sp.Start >= 0 && sp.Start <= sp.End && sp.End <= len(s)
}

// Len returns the byte length of the span.
func (sp Span) Len() int { return sp.End - sp.Start }
