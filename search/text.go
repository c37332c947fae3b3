package search

import "strings"

// titleTokens splits a title into a case-folded bag-of-words token set,
// trimming surrounding punctuation from each token.
func titleTokens(title string) map[string]struct{} {
	words := strings.Fields(title)
	tokens := make(map[string]struct{}, len(words))
	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" {
			tokens[cleaned] = struct{}{}
		}
	}
	return tokens
}

// jaccard computes token-set Jaccard similarity: |intersection| / |union|.
// Two empty sets are identical (1); an empty set against a non-empty one
// shares nothing (0).
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
