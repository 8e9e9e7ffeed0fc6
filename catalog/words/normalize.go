package words

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// Stemmer reduces titles and search phrases to the stems stored in the
// comics.words column.
type Stemmer struct{}

func (Stemmer) Norm(phrase string) []string {
	return Normalize(phrase)
}

// Normalize lowercases phrase, drops English stop words and returns the
// distinct stems in order of first appearance.
func Normalize(phrase string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(phrase), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(tokens) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if english.IsStopWord(t) {
			continue
		}
		stem := english.Stem(t, true)
		if stem == "" {
			continue
		}
		if _, ok := seen[stem]; ok {
			continue
		}
		seen[stem] = struct{}{}
		out = append(out, stem)
	}
	return out
}
