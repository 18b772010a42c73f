// Package answer turns a filtered document set into a natural-language reply
// by templated text assembly. No generative model is involved; phrasing comes
// from small fixed pools and the retrieved text itself.
package answer

import (
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Timeless-inc/Tango/internal/config"
	"github.com/Timeless-inc/Tango/pkg/utils"
)

// InsufficientInformation is the fixed reply when retrieval keeps nothing.
// A normal outcome, not an error.
const InsufficientInformation = "I don't have enough information to answer that question."

// queryClass is the interrogative form of a query, used to pick an intro pool.
type queryClass int

const (
	classHow queryClass = iota
	classWhat
	classWhere
	classWho
	classWhen
	classQuestion
	classDefault
)

var introPools = map[queryClass][]string{
	classHow: {
		"Here is how it works:",
		"It works like this:",
		"The process is the following:",
	},
	classWhat: {
		"Here is what I found:",
		"From what I know, it is the following:",
		"The answer is the",
	},
	classWhere: {
		"As for the location:",
		"Here is where you can find it:",
		"You can find it at the",
	},
	classWho: {
		"Here is who that is:",
		"About that:",
		"It refers to the",
	},
	classWhen: {
		"As for the timing:",
		"Here is when that happens:",
		"The relevant dates are the following:",
	},
	classQuestion: {
		"Good question. Here is what I know:",
		"Based on what I know:",
		"From the knowledge base:",
	},
	classDefault: {
		"Based on what I know:",
		"Here is the relevant information:",
		"From what is on record, the",
	},
}

// Composer assembles answers from filtered documents. The random source only
// drives intro-phrase variety; inject a seeded source for deterministic output.
type Composer struct {
	rng          *rand.Rand
	maxLength    int
	minTruncate  int
	maxSentences int
}

// NewComposer builds a composer from answer config. A nil rng is seeded from
// the clock, or from cfg.Seed when that is set.
func NewComposer(cfg *config.AnswerConfig, rng *rand.Rand) *Composer {
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	return &Composer{
		rng:          rng,
		maxLength:    cfg.MaxLength,
		minTruncate:  cfg.MinTruncate,
		maxSentences: cfg.MaxSentences,
	}
}

// Compose renders the filtered documents into an answer string and returns it
// with the document texts actually used as sources. An empty document list
// yields the fixed insufficient-information reply with no sources.
func (c *Composer) Compose(query string, docs []string) (string, []string) {
	if len(docs) == 0 {
		return InsufficientInformation, []string{}
	}
	intro := c.pickIntro(query)

	var text string
	var sources []string
	if len(docs) == 1 {
		text = c.composeSingle(intro, docs[0])
		sources = []string{docs[0]}
	} else {
		text, sources = c.composeMulti(intro, query, docs)
	}
	return c.truncate(text), sources
}

func (c *Composer) pickIntro(query string) string {
	pool := introPools[classify(query)]
	return pool[c.rng.Intn(len(pool))]
}

func classify(query string) queryClass {
	lower := strings.ToLower(query)
	switch {
	case strings.Contains(lower, "how"):
		return classHow
	case strings.Contains(lower, "which"), strings.Contains(lower, "what"):
		return classWhat
	case strings.Contains(lower, "where"):
		return classWhere
	case strings.Contains(lower, "who"):
		return classWho
	case strings.Contains(lower, "when"):
		return classWhen
	case strings.Contains(lower, "?"):
		return classQuestion
	default:
		return classDefault
	}
}

// composeSingle renders one document: short texts become a single paragraph
// under the intro, longer ones are split roughly in half into two paragraphs.
func (c *Composer) composeSingle(intro, doc string) string {
	text := stripLeadingArticle(intro, normalizeText(doc))
	sentences := splitSentences(text)
	if len(sentences) <= c.maxSentences {
		return intro + " " + strings.Join(sentences, " ")
	}
	half := (len(sentences) + 1) / 2
	first := intro + " " + strings.Join(sentences[:half], " ")
	second := strings.Join(sentences[half:], " ")
	return first + "\n\n" + second
}

// composeMulti merges several documents: sentences are deduplicated, then
// split into a primary group (mentions a query keyword) and a secondary group,
// each capped, and emitted as up to two paragraphs.
func (c *Composer) composeMulti(intro, query string, docs []string) (string, []string) {
	keywords := utils.Keywords(query, nil)

	type tagged struct {
		sentence string
		docIdx   int
	}
	var all []tagged
	var flat []string
	for i, doc := range docs {
		for _, s := range splitSentences(normalizeText(doc)) {
			all = append(all, tagged{sentence: s, docIdx: i})
			flat = append(flat, s)
		}
	}
	kept := dedupSentences(flat)
	keptSet := make(map[string]bool, len(kept))
	for _, s := range kept {
		keptSet[s] = true
	}

	var primary, secondary []tagged
	seen := make(map[string]bool)
	for _, ts := range all {
		if !keptSet[ts.sentence] || seen[ts.sentence] {
			continue
		}
		seen[ts.sentence] = true
		if mentionsAny(ts.sentence, keywords) {
			primary = append(primary, ts)
		} else {
			secondary = append(secondary, ts)
		}
	}
	if len(primary) > c.maxSentences {
		primary = primary[:c.maxSentences]
	}
	if len(secondary) > c.maxSentences {
		secondary = secondary[:c.maxSentences]
	}
	// With no keyword-bearing sentences, the secondary group carries the answer.
	if len(primary) == 0 {
		primary, secondary = secondary, nil
	}

	usedDocs := make(map[int]bool)
	var first []string
	for _, ts := range primary {
		first = append(first, ts.sentence)
		usedDocs[ts.docIdx] = true
	}
	var second []string
	for _, ts := range secondary {
		second = append(second, ts.sentence)
		usedDocs[ts.docIdx] = true
	}

	text := intro + " " + strings.Join(first, " ")
	if len(second) > 0 {
		text += "\n\n" + strings.Join(second, " ")
	}

	var sources []string
	for i, doc := range docs {
		if usedDocs[i] {
			sources = append(sources, doc)
		}
	}
	return text, sources
}

func mentionsAny(sentence string, keywords []string) bool {
	lower := strings.ToLower(sentence)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// truncate caps text at maxLength, preferring a paragraph boundary past
// minTruncate, then a sentence-ending period past minTruncate, then a hard
// cut with an ellipsis marker.
func (c *Composer) truncate(text string) string {
	if len(text) <= c.maxLength {
		return text
	}
	window := text[:c.maxLength]
	if idx := strings.LastIndex(window, "\n\n"); idx > c.minTruncate {
		return window[:idx]
	}
	if idx := strings.LastIndex(window, "."); idx > c.minTruncate {
		return window[:idx+1]
	}
	// Back off to a rune boundary so the hard cut never splits a
	// multi-byte character.
	cut := c.maxLength - 3
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
