package deinflect

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/marumori/jiten/internal/domain"
)

// LatinCasing handles Latin-script input: it takes the word between cursor
// and the first word boundary and yields it verbatim plus its lowercase and
// uppercase forms, so "Read", "read" and sentence-initial "READ" all reach
// the same entries.
type LatinCasing struct{}

func (LatinCasing) Deinflect(sentence string, cursor int) []domain.Deinflection {
	rest := sentence[cursor:]

	end := len(rest)
	for i, r := range rest {
		if !unicode.IsLetter(r) && r != '\'' && r != '-' {
			end = i
			break
		}
	}
	word := rest[:end]
	if word == "" || !isLatin(word) {
		return nil
	}

	span := domain.Span{Start: cursor, End: cursor + end}
	out := []domain.Deinflection{{Span: span, Lemma: word}}
	for _, variant := range []string{strings.ToLower(word), strings.ToUpper(word)} {
		if variant != word {
			out = append(out, domain.Deinflection{Span: span, Lemma: variant})
		}
	}
	return out
}

// isLatin reports whether the word's first rune is Latin script; CJK input
// is left to the morphological strategies.
func isLatin(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return r < utf8.RuneSelf || unicode.Is(unicode.Latin, r)
}
