package utils

import "strings"

// stopwords are common words carrying no topical signal, skipped when
// extracting query keywords.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true,
	"be": true, "been": true, "do": true, "does": true, "did": true,
	"i": true, "you": true, "he": true, "she": true, "it": true, "we": true,
	"they": true, "my": true, "your": true, "its": true, "our": true,
	"of": true, "in": true, "on": true, "at": true, "to": true, "for": true,
	"from": true, "with": true, "about": true, "as": true, "by": true,
	"and": true, "or": true, "but": true, "not": true, "no": true,
	"what": true, "which": true, "who": true, "whom": true, "whose": true,
	"when": true, "where": true, "why": true, "how": true,
	"can": true, "could": true, "will": true, "would": true, "should": true,
	"there": true, "this": true, "that": true, "these": true, "those": true,
}

// Keywords tokenizes text into lowercase words, strips punctuation from word
// edges, and drops stopwords plus any words in extra.
func Keywords(text string, extra []string) []string {
	extraSet := make(map[string]bool, len(extra))
	for _, w := range extra {
		extraSet[strings.ToLower(w)] = true
	}
	var out []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!?\"'()[]")
		if word == "" || IsStopword(word) || extraSet[word] {
			continue
		}
		out = append(out, word)
	}
	return out
}

// IsStopword reports whether word is in the stopword set.
func IsStopword(word string) bool {
	return stopwords[strings.ToLower(word)]
}
