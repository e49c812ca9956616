package state

import "github.com/marumori/jiten/internal/domain"

// Snapshot is an immutable view of all dictionaries and profiles plus the
// current-profile selection. Snapshots are built whole and swapped whole;
// nothing mutates one after publication.
type Snapshot struct {
	dictionaries map[domain.DictionaryID]domain.Dictionary
	order        []domain.DictionaryID
	profiles     map[domain.ProfileID]domain.Profile
	current      domain.ProfileID
}

// Dictionary returns a dictionary by id.
func (s *Snapshot) Dictionary(id domain.DictionaryID) (domain.Dictionary, bool) {
	d, ok := s.dictionaries[id]
	return d, ok
}

// Dictionaries returns all dictionaries in position order.
func (s *Snapshot) Dictionaries() []domain.Dictionary {
	out := make([]domain.Dictionary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.dictionaries[id])
	}
	return out
}

// Profile returns a profile by id.
func (s *Snapshot) Profile(id domain.ProfileID) (domain.Profile, bool) {
	p, ok := s.profiles[id]
	return p, ok
}

// Profiles returns all profiles keyed by id. Callers must not mutate the
// returned map.
func (s *Snapshot) Profiles() map[domain.ProfileID]domain.Profile {
	return s.profiles
}

// CurrentProfileID returns the process-wide current profile id.
func (s *Snapshot) CurrentProfileID() domain.ProfileID { return s.current }

// CurrentProfile returns the current profile.
func (s *Snapshot) CurrentProfile() domain.Profile {
	return s.profiles[s.current]
}

// SortingDictionary resolves the profile's sorting dictionary, returning nil
// when none is set or when the reference dangles (dictionary since removed):
// dangling means "no sorting data", never an error.
func (s *Snapshot) SortingDictionary(profile domain.ProfileID) *domain.DictionaryID {
	p, ok := s.profiles[profile]
	if !ok || p.SortingDictionary == nil {
		return nil
	}
	if _, ok := s.dictionaries[*p.SortingDictionary]; !ok {
		return nil
	}
	id := *p.SortingDictionary
	return &id
}
