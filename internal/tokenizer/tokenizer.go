// Package tokenizer provides text tokenisation shared by the document
// builder and the query engine. It lower-cases input, splits on
// non-alphanumeric boundaries, drops short tokens and scheme-name
// stop-words, and produces character trigrams for substring matching.
package tokenizer

import (
	"strings"
	"unicode"
)

// Scheme names are dominated by boilerplate words that carry no signal for
// matching one fund against another.
var stopWords = map[string]struct{}{
	"fund": {}, "mutual": {}, "scheme": {}, "plan": {},
	"direct": {}, "regular": {}, "growth": {},
}

// Tokenize breaks text into lowercased tokens in order of appearance,
// keeping duplicates. Tokens shorter than two characters and stop-words are
// dropped.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) < 2 {
			continue
		}
		if _, isStop := stopWords[word]; isStop {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// Trigrams returns every 3-character window of word. Words shorter than
// three characters yield nothing.
func Trigrams(word string) []string {
	if len(word) < 3 {
		return nil
	}
	grams := make([]string, 0, len(word)-2)
	for i := 0; i+3 <= len(word); i++ {
		grams = append(grams, word[i:i+3])
	}
	return grams
}

// IsStopWord reports whether the lowercased word is on the stop-word list.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}
