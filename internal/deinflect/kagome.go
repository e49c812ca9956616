package deinflect

import (
	"fmt"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Kagome is an Analyzer backed by the kagome morphological analyzer with
// the bundled IPA dictionary. It recovers the dictionary form of the leading
// Japanese token, extending the surface over trailing auxiliaries so that
// 読んだ deinflects to 読む with the span covering 読んだ.
type Kagome struct {
	t *tokenizer.Tokenizer
}

// NewKagome builds the tokenizer. The IPA dictionary loads once per process;
// construct a single Kagome and share it.
func NewKagome() (*Kagome, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("kagome tokenizer: %w", err)
	}
	return &Kagome{t: t}, nil
}

// Kagome IPA feature indices.
const (
	featPOS      = 0
	featBaseForm = 6
)

func (k *Kagome) Analyze(text string) (string, int, bool) {
	tokens := k.t.Tokenize(text)

	var first *tokenizer.Token
	firstIdx := -1
	for i := range tokens {
		if tokens[i].Class == tokenizer.DUMMY {
			continue
		}
		first = &tokens[i]
		firstIdx = i
		break
	}
	if first == nil {
		return "", 0, false
	}

	features := first.Features()
	lemma := first.Surface
	if len(features) > featBaseForm && features[featBaseForm] != "*" {
		lemma = features[featBaseForm]
	}
	if lemma == "" {
		return "", 0, false
	}

	surfaceLen := len(first.Surface)

	// A conjugated verb or adjective continues into auxiliary tokens
	// (読ん+だ, 食べ+られ+た); the surface span covers them, the lemma stays
	// the leading token's base form.
	if len(features) > featPOS && (features[featPOS] == "動詞" || features[featPOS] == "形容詞") {
		for i := firstIdx + 1; i < len(tokens); i++ {
			f := tokens[i].Features()
			if len(f) <= featPOS || (f[featPOS] != "助動詞" && f[featPOS] != "動詞") {
				break
			}
			surfaceLen += len(tokens[i].Surface)
		}
	}

	return lemma, surfaceLen, true
}
