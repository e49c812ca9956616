package domain

// ProfileID identifies a profile row.
type ProfileID = int64

// ProfileConfig holds per-profile settings that are opaque to the engine
// core; front ends read and write them, copy-profile duplicates them.
type ProfileConfig struct {
	FontFamily   string
	AnkiDeck     string
	AnkiNoteType string
}

// Profile is a named selection of enabled dictionaries plus scalar config.
// SortingDictionary, when non-nil, names the dictionary whose frequency data
// ranks otherwise-tied lookup results. A dangling reference (dictionary since
// removed) is treated as "no sorting data", never an error.
type Profile struct {
	ID                  ProfileID
	Name                string
	SortingDictionary   *DictionaryID
	Config              ProfileConfig
	EnabledDictionaries map[DictionaryID]struct{}
}

// Enabled reports whether the dictionary is enabled for this profile.
func (p *Profile) Enabled(id DictionaryID) bool {
	_, ok := p.EnabledDictionaries[id]
	return ok
}
