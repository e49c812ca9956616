package domain

import (
	"encoding/json"
	"fmt"
)

// RecordKind is the numeric discriminant tagging a stored record payload.
// The set is closed: a stored discriminant outside it marks a corrupt row.
type RecordKind int

const (
	KindGlossary  RecordKind = 1
	KindFrequency RecordKind = 2
	KindPitch     RecordKind = 3
)

func (k RecordKind) String() string {
	switch k {
	case KindGlossary:
		return "glossary"
	case KindFrequency:
		return "frequency"
	case KindPitch:
		return "pitch"
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

func (k RecordKind) IsValid() bool {
	switch k {
	case KindGlossary, KindFrequency, KindPitch:
		return true
	}
	return false
}

// Payload is a decoded record payload. Implementations form a closed set,
// one per RecordKind.
type Payload interface {
	Kind() RecordKind
}

// Glossary is the definition content of a term.
type Glossary struct {
	Content []string `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

func (Glossary) Kind() RecordKind { return KindGlossary }

// FrequencyMode determines how a frequency value orders terms.
type FrequencyMode int

const (
	// FrequencyRank values are ranks: smaller means more frequent.
	FrequencyRank FrequencyMode = 0
	// FrequencyOccurrence values are raw counts: larger means more frequent.
	FrequencyOccurrence FrequencyMode = 1
)

func (m FrequencyMode) String() string {
	switch m {
	case FrequencyRank:
		return "rank"
	case FrequencyOccurrence:
		return "occurrence"
	}
	return fmt.Sprintf("unknown(%d)", int(m))
}

func (m FrequencyMode) IsValid() bool {
	return m == FrequencyRank || m == FrequencyOccurrence
}

// Frequency is corpus frequency data for a term.
type Frequency struct {
	Mode  FrequencyMode `json:"mode"`
	Value int64         `json:"value"`
	// Display is an optional human-readable rendering, e.g. "12K".
	Display string `json:"display,omitempty"`
}

func (Frequency) Kind() RecordKind { return KindFrequency }

// Pitch is Japanese pitch-accent data: the downstep mora positions per
// reading variant.
type Pitch struct {
	Downsteps []int `json:"downsteps"`
}

func (Pitch) Kind() RecordKind { return KindPitch }

// Record is one stored entry: a payload of a single kind attached to a term
// in a source dictionary.
type Record struct {
	ID      int64
	Source  DictionaryID
	Term    Term
	Payload Payload
}

// EncodePayload serializes a payload to the opaque stored form.
func EncodePayload(p Payload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", p.Kind(), err)
	}
	return data, nil
}

// DecodePayload deserializes stored bytes according to the kind
// discriminant. An unrecognized kind or undecodable payload yields a
// CorruptDataError: the row is corrupt, not skippable.
func DecodePayload(kind RecordKind, data []byte) (Payload, error) {
	var p Payload
	switch kind {
	case KindGlossary:
		p = &Glossary{}
	case KindFrequency:
		p = &Frequency{}
	case KindPitch:
		p = &Pitch{}
	default:
		return nil, NewCorruptDataError(kind, "unknown record kind")
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, NewCorruptDataError(kind, err.Error())
	}
	switch v := p.(type) {
	case *Glossary:
		return *v, nil
	case *Frequency:
		if !v.Mode.IsValid() {
			return nil, NewCorruptDataError(kind, fmt.Sprintf("invalid frequency mode %d", v.Mode))
		}
		return *v, nil
	case *Pitch:
		return *v, nil
	}
	return nil, NewCorruptDataError(kind, "unreachable")
}
