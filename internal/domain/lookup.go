package domain

// LookupResult is one ranked lookup hit: the decoded record plus the ranking
// context it was ordered under (dictionary position, and the sorting
// dictionary's frequency data when any matched).
type LookupResult struct {
	Record   Record
	Position int
	// Frequency is the sorting-dictionary frequency used for ranking, nil
	// when the sorting dictionary had no data for the term.
	Frequency *Frequency
}
