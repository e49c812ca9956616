// Package archive defines the pluggable parser boundary between raw
// dictionary archives and the importer: kind detection by marker content,
// and a lazy entry stream per format.
package archive

import (
	"bytes"
	"fmt"

	"github.com/marumori/jiten/internal/domain"
)

// Kind identifies an archive format.
type Kind int

const (
	KindUnknown Kind = iota
	KindYomitan
)

func (k Kind) String() string {
	switch k {
	case KindYomitan:
		return "yomitan"
	}
	return "unknown"
}

// Entry is one parsed (term, payload) pair. Frequency payloads additionally
// feed the ranking table.
type Entry struct {
	Term    domain.Term
	Payload domain.Payload
}

// EntryReader yields entries lazily. The sequence is finite and not
// restartable: parse again for a second pass.
type EntryReader interface {
	// Next returns the next entry, or io.EOF when the archive is exhausted.
	Next() (*Entry, error)
	// Frac reports consumption progress as a monotonically non-decreasing
	// fraction in [0, 1].
	Frac() float64
}

// Parser turns raw archive bytes into dictionary metadata and an entry
// stream.
type Parser interface {
	Parse(data []byte) (domain.DictionaryMeta, EntryReader, error)
}

var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// Detect determines the archive kind by marker content. An unrecognized
// archive is a validation error.
func Detect(data []byte) (Kind, error) {
	if bytes.HasPrefix(data, zipMagic) && hasYomitanIndex(data) {
		return KindYomitan, nil
	}
	return KindUnknown, fmt.Errorf("unrecognized archive format: %w", domain.ErrValidation)
}

// ParserFor returns the parser for a detected kind.
func ParserFor(kind Kind) (Parser, error) {
	switch kind {
	case KindYomitan:
		return YomitanParser{}, nil
	}
	return nil, fmt.Errorf("no parser for archive kind %s: %w", kind, domain.ErrValidation)
}
