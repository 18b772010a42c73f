package answer

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	punctuationRun = regexp.MustCompile(`([.!?,;:])[.!?,;:]+`)
)

// normalizeText collapses whitespace runs to single spaces and punctuation
// runs to their first character.
func normalizeText(text string) string {
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = punctuationRun.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// splitSentences splits text into sentences on terminal punctuation followed
// by a space. Terminators stay attached to their sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		if i+1 < len(runes) && runes[i+1] != ' ' {
			continue
		}
		s := strings.TrimSpace(string(runes[start : i+1]))
		if s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// dedupThreshold is the minimum sentence length subject to the approximate
// duplicate check; shorter sentences always pass.
const dedupThreshold = 15

// dedupSentences drops sentences that are substrings of, or contain, an
// already-kept sentence. Approximate by design: near-identical chunk overlap
// produces exactly this kind of containment duplicate.
func dedupSentences(sentences []string) []string {
	var kept []string
	for _, s := range sentences {
		if len(s) > dedupThreshold && containsOrContained(s, kept) {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

func containsOrContained(s string, kept []string) bool {
	for _, k := range kept {
		if strings.Contains(k, s) || strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// stripLeadingArticle removes the document's leading article when the intro
// phrase already ends with one, so "…the" + "The library…" does not double up.
func stripLeadingArticle(intro, text string) string {
	introWords := strings.Fields(strings.ToLower(strings.TrimRight(intro, " :.,")))
	if len(introWords) == 0 {
		return text
	}
	last := introWords[len(introWords)-1]
	if last != "the" && last != "a" && last != "an" {
		return text
	}
	for _, article := range []string{"The ", "the ", "A ", "a ", "An ", "an "} {
		if strings.HasPrefix(text, article) {
			return text[len(article):]
		}
	}
	return text
}
