// Package lexical tokenises English text into normalised content words.
// It backs the offline embedder and the extractive answerer, which must
// agree on what counts as the same word.
package lexical

import (
	"strings"
	"unicode"
)

// stopwords are function words that carry no topical meaning.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`a an the is are was were be to of and or in on at for with
		do does did i you we it this that what which who how have has had my me can will
		there any many much about from by as if not no so its our your their`) {
		stopwords[w] = struct{}{}
	}
}

// IsStopword reports whether w (already lower-cased) is a stop word.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

// Words splits text into lower-cased runs of letters and digits.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Stem strips common English plural endings.
//
//	policies -> policy, days -> day, class -> class
func Stem(w string) string {
	n := len([]rune(w))
	switch {
	case n > 4 && strings.HasSuffix(w, "ies"):
		return strings.TrimSuffix(w, "ies") + "y"
	case n > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return strings.TrimSuffix(w, "s")
	default:
		return w
	}
}

// Terms returns the stemmed content words of text, in order, duplicates kept.
func Terms(text string) []string {
	words := Words(text)
	terms := make([]string, 0, len(words))
	for _, w := range words {
		if IsStopword(w) {
			continue
		}
		terms = append(terms, Stem(w))
	}
	return terms
}

// TermSet returns the distinct content words of text.
func TermSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range Terms(text) {
		set[t] = struct{}{}
	}
	return set
}
