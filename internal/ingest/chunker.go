// Package ingest turns extracted document text into store-ready chunks.
package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Chunk is one store-ready document: the formatted text payload plus the
// metadata recorded alongside it. The store treats the text as opaque.
type Chunk struct {
	Text     string
	Metadata map[string]any
}

// Chunker splits cleaned text into character-budget chunks on sentence
// boundaries, so no chunk cuts a sentence in half.
type Chunker struct {
	chunkSize int
}

// NewChunker creates a chunker with the given character budget per chunk.
func NewChunker(chunkSize int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	return &Chunker{chunkSize: chunkSize}
}

var sentenceEnd = regexp.MustCompile(`([.!?])\s+`)

// Chunk splits text into chunks. Each chunk is prefixed with Source/Title
// header lines when those are known, mirroring how scraped and uploaded
// documents are labeled for later listing. Empty or whitespace-only text
// yields no chunks.
func (c *Chunker) Chunk(text, title, source string) []Chunk {
	cleaned := cleanText(text)
	if cleaned == "" {
		return nil
	}

	var pieces []string
	marked := sentenceEnd.ReplaceAllString(cleaned, "$1\x00")
	var current strings.Builder
	for _, sentence := range strings.Split(marked, "\x00") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(sentence)+1 > c.chunkSize {
			pieces = append(pieces, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}

	chunks := make([]Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, Chunk{
			Text: formatChunk(piece, title, source),
			Metadata: map[string]any{
				"chunk_id":    uuid.New().String(),
				"chunk_index": i,
				"title":       title,
				"source":      source,
			},
		})
	}
	return chunks
}

func formatChunk(text, title, source string) string {
	var header strings.Builder
	if source != "" {
		fmt.Fprintf(&header, "Source: %s\n", source)
	}
	if title != "" {
		fmt.Fprintf(&header, "Title: %s\n", title)
	}
	if header.Len() == 0 {
		return text
	}
	return header.String() + "\n" + text
}

var (
	controlChars  = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	blankLineRuns = regexp.MustCompile(`\n\s*\n\s*\n+`)
	spaceRuns     = regexp.MustCompile(`[ \t]+`)
)

// cleanText strips control characters and collapses whitespace noise from
// extracted documents.
func cleanText(text string) string {
	text = controlChars.ReplaceAllString(text, "")
	text = blankLineRuns.ReplaceAllString(text, "\n\n")
	text = spaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
