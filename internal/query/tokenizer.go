// Package query turns raw search text into a ParsedQuery via the static
// taxonomy. It is the fast path of the resolution chain; anything it cannot
// resolve falls through to candidate discovery and the model-assisted parser.
package query

import (
	"strings"

	"github.com/roastmatch/coffee-search/internal/taxonomy"
)

// Tokenize splits raw query text into lowercase tokens, greedily consuming
// the longest known multi-word phrase (jargon, aliases, meta-categories) at
// each position so overlapping phrases cannot double-match. Tokens carrying
// digits or a dollar sign are price fragments and are never phrase-matched.
func Tokenize(tax *taxonomy.Taxonomy, raw string) []string {
	words := strings.Fields(strings.ToLower(raw))
	for i, w := range words {
		words[i] = strings.Trim(w, "(),.;:!?\"'")
	}

	phrases := tax.Phrases()
	var tokens []string
	for i := 0; i < len(words); {
		if words[i] == "" {
			i++
			continue
		}
		if isPriceFragment(words[i]) {
			tokens = append(tokens, words[i])
			i++
			continue
		}
		if phrase, n := matchPhrase(phrases, words[i:]); n > 0 {
			tokens = append(tokens, phrase)
			i += n
			continue
		}
		tokens = append(tokens, words[i])
		i++
	}
	return tokens
}

// matchPhrase tries each known phrase (longest first) against the head of
// the remaining words and returns the joined phrase plus the number of words
// consumed.
func matchPhrase(phrases [][]string, words []string) (string, int) {
	for _, phrase := range phrases {
		if len(phrase) > len(words) {
			continue
		}
		matched := true
		for j, pw := range phrase {
			if words[j] != pw || isPriceFragment(words[j]) {
				matched = false
				break
			}
		}
		if matched {
			return strings.Join(phrase, " "), len(phrase)
		}
	}
	return "", 0
}

func isPriceFragment(word string) bool {
	for _, r := range word {
		if r == '$' || (r >= '0' && r <= '9') {
			return true
		}
	}
	return false
}
