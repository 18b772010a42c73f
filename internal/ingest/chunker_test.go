package ingest

import (
	"strings"
	"testing"
)

func TestChunker_SmallTextSingleChunk(t *testing.T) {
	c := NewChunker(1000)
	chunks := c.Chunk("One sentence. Another sentence.", "Handbook", "handbook.pdf")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	if !strings.HasPrefix(chunks[0].Text, "Source: handbook.pdf\nTitle: Handbook\n\n") {
		t.Errorf("chunk header missing: %q", chunks[0].Text)
	}
	if chunks[0].Metadata["source"] != "handbook.pdf" {
		t.Errorf("metadata = %v", chunks[0].Metadata)
	}
	if chunks[0].Metadata["chunk_id"] == "" {
		t.Error("chunk_id should be set")
	}
}

func TestChunker_SplitsOnSentenceBoundaries(t *testing.T) {
	c := NewChunker(80)
	text := strings.Repeat("This is a sentence about the campus that has some length to it. ", 10)
	chunks := c.Chunk(text, "", "")
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if !strings.HasSuffix(strings.TrimSpace(ch.Text), ".") {
			t.Errorf("chunk %d does not end on a sentence boundary: %q", i, ch.Text)
		}
		if ch.Metadata["chunk_index"] != i {
			t.Errorf("chunk %d index = %v", i, ch.Metadata["chunk_index"])
		}
	}
}

func TestChunker_EmptyText(t *testing.T) {
	c := NewChunker(100)
	if chunks := c.Chunk("   \n\n  ", "t", "s"); len(chunks) != 0 {
		t.Errorf("got %d chunks for blank text", len(chunks))
	}
}

func TestChunker_NoHeaderWithoutTitleOrSource(t *testing.T) {
	c := NewChunker(100)
	chunks := c.Chunk("Just text.", "", "")
	if len(chunks) != 1 {
		t.Fatal("expected one chunk")
	}
	if strings.Contains(chunks[0].Text, "Source:") || strings.Contains(chunks[0].Text, "Title:") {
		t.Errorf("unexpected header: %q", chunks[0].Text)
	}
}

func TestCleanText(t *testing.T) {
	got := cleanText("a\x00b\n\n\n\nc   d")
	if got != "ab\n\nc d" {
		t.Errorf("got %q", got)
	}
}
