package knowledge

import "strings"

// Stop words ignored when matching query words
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "what": true, "how": true, "does": true, "our": true,
	"we": true, "must": true, "should": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}#*"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// overlapScore returns the fraction of distinct query words present in the document.
func overlapScore(document string, queryWords []string) float64 {
	if len(queryWords) == 0 {
		return 0
	}

	docWordSet := make(map[string]bool)
	for _, word := range tokenizeAndFilter(document) {
		docWordSet[word] = true
	}

	seen := make(map[string]bool, len(queryWords))
	matched := 0
	for _, qWord := range queryWords {
		if seen[qWord] {
			continue
		}
		seen[qWord] = true
		if docWordSet[qWord] {
			matched++
		}
	}
	return float64(matched) / float64(len(seen))
}
