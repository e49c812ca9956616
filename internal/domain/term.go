package domain

// Term is a (headword, reading) pair identifying a dictionary entry.
// At least one side is always present; lookups may match on either.
type Term struct {
	Headword string
	Reading  string
}

// NewTerm constructs a Term, enforcing that headword and reading are not
// both empty.
func NewTerm(headword, reading string) (Term, error) {
	if headword == "" && reading == "" {
		return Term{}, NewValidationError("term", "headword and reading both empty")
	}
	return Term{Headword: headword, Reading: reading}, nil
}

// Matches reports whether the lemma equals either side of the term.
func (t Term) Matches(lemma string) bool {
	return (t.Headword != "" && t.Headword == lemma) ||
		(t.Reading != "" && t.Reading == lemma)
}

// String returns "headword" or "headword (reading)" for logs.
func (t Term) String() string {
	switch {
	case t.Headword == "":
		return t.Reading
	case t.Reading == "":
		return t.Headword
	default:
		return t.Headword + " (" + t.Reading + ")"
	}
}
