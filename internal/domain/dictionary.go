package domain

// DictionaryID identifies a dictionary row.
type DictionaryID = int64

// DictionaryMeta is the descriptive metadata parsed from an archive.
type DictionaryMeta struct {
	Name        string
	Version     string
	Description string
	URL         string
}

// Dictionary is an imported dictionary. Position defines the total merge and
// display order across all dictionaries: lower positions rank earlier in
// lookup results. Positions are unique but not necessarily gapless.
type Dictionary struct {
	ID       DictionaryID
	Position int
	Meta     DictionaryMeta
}
