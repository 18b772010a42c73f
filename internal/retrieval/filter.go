// Package retrieval decides which similarity hits are relevant enough to
// answer a query. Raw similarity rank alone is noisy on short FAQ-style text,
// so a small rule chain gates the hits before answer composition.
package retrieval

import (
	"strings"

	"github.com/Timeless-inc/Tango/internal/config"
	"github.com/Timeless-inc/Tango/internal/vectordb"
	"github.com/Timeless-inc/Tango/pkg/utils"
)

// Topics holds the keyword tables driving the topical override rules.
// The tables are deployment vocabulary loaded from config, not code.
type Topics struct {
	Identity      []string
	Institutional []string
}

// Filter applies the relevance rule chain to retrieved hits.
type Filter struct {
	topics            Topics
	identityThreshold float64
	highThreshold     float64
	extraStopwords    []string
}

// NewFilter builds a filter from retrieval config.
func NewFilter(cfg *config.RetrievalConfig) *Filter {
	return &Filter{
		topics: Topics{
			Identity:      lowerAll(cfg.IdentityKeywords),
			Institutional: lowerAll(cfg.InstitutionalKeywords),
		},
		identityThreshold: cfg.IdentityThreshold,
		highThreshold:     cfg.HighThreshold,
		extraStopwords:    cfg.ExtraStopwords,
	}
}

func lowerAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}

// Keywords returns the query's lowercase non-stopword keywords.
func (f *Filter) Keywords(query string) []string {
	return utils.Keywords(query, f.extraStopwords)
}

// Apply reduces hits to the relevant subset. Rules, in order:
//
//  1. Identity override: a query about the assistant itself keeps only hits
//     that mention an identity keyword and clear the moderate threshold.
//  2. Institutional override: an institutional query keeps institutional hits
//     but drops any that also match the identity table, so the two topics
//     never bleed into each other.
//  3. Threshold fallback: when the overrides keep nothing, any hit above the
//     high threshold survives.
//  4. Best-score fallback: when even that is empty, the top fallbackN hits
//     survive regardless of score. The assistant prefers saying something
//     over nothing, as long as anything was retrieved at all.
//
// Matching is plain substring containment, deliberately permissive; it may
// over-match and that is accepted behavior.
func (f *Filter) Apply(query string, hits []vectordb.Result, fallbackN int) []vectordb.Result {
	if len(hits) == 0 {
		return []vectordb.Result{}
	}
	lowerQuery := strings.ToLower(query)

	var kept []vectordb.Result
	switch {
	case containsAny(lowerQuery, f.topics.Identity):
		for _, hit := range hits {
			text := strings.ToLower(hit.Text)
			if containsAny(text, f.topics.Identity) && hit.Score > f.identityThreshold {
				kept = append(kept, hit)
			}
		}
	case containsAny(lowerQuery, f.topics.Institutional):
		for _, hit := range hits {
			text := strings.ToLower(hit.Text)
			if containsAny(text, f.topics.Institutional) && !containsAny(text, f.topics.Identity) {
				kept = append(kept, hit)
			}
		}
	}

	if len(kept) == 0 {
		for _, hit := range hits {
			if hit.Score > f.highThreshold {
				kept = append(kept, hit)
			}
		}
	}

	if len(kept) == 0 {
		if fallbackN < 1 {
			fallbackN = 1
		}
		if fallbackN > len(hits) {
			fallbackN = len(hits)
		}
		// Hits arrive ranked descending from the store.
		kept = append(kept, hits[:fallbackN]...)
	}

	return kept
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
