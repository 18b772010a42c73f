package keyword

import (
	"testing"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		_ = ix.Close()
	})
	return ix
}

func TestIndex_SearchFindsContent(t *testing.T) {
	ix := newTestIndex(t)

	docs := []string{
		"The library opens at 8am and closes at 10pm during the semester.",
		"Tuition payments are due by the fifth business day of each month.",
	}
	metas := []map[string]any{
		{"source": "library.md", "title": "Library Hours"},
		{"source": "tuition.md", "title": "Tuition"},
	}
	if err := ix.Rebuild(docs, metas); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	hits, err := ix.Search("tuition", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected at least one hit for \"tuition\"")
	}
	if hits[0].ID != 1 {
		t.Errorf("first hit ID = %d, want 1", hits[0].ID)
	}
	if hits[0].Source != "tuition.md" {
		t.Errorf("first hit Source = %q, want %q", hits[0].Source, "tuition.md")
	}

	// Standard analyzer (no stemming) so casing does not matter but word forms do.
	hits2, err := ix.Search("Library", 10)
	if err != nil {
		t.Fatalf("Search Library: %v", err)
	}
	if len(hits2) == 0 || hits2[0].ID != 0 {
		t.Fatalf("expected document 0 as first hit for \"Library\", got %+v", hits2)
	}
}

func TestIndex_SearchFindsTitle(t *testing.T) {
	ix := newTestIndex(t)

	docs := []string{"General information about campus services."}
	metas := []map[string]any{{"source": "handbook.pdf", "title": "Enrollment Handbook"}}
	if err := ix.Rebuild(docs, metas); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	hits, err := ix.Search("enrollment", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected a hit on the title field for \"enrollment\"")
	}
	if hits[0].ID != 0 {
		t.Errorf("first hit ID = %d, want 0", hits[0].ID)
	}
}

func TestIndex_RebuildReplacesContents(t *testing.T) {
	ix := newTestIndex(t)

	docs := []string{"first doc about scholarships", "second doc about exams", "third doc about housing"}
	if err := ix.Rebuild(docs, nil); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	n, err := ix.DocCount()
	if err != nil {
		t.Fatalf("DocCount: %v", err)
	}
	if n != 3 {
		t.Fatalf("DocCount = %d, want 3", n)
	}

	// Rebuild with a smaller snapshot; stale ids must disappear.
	if err := ix.Rebuild([]string{"only doc about exams"}, nil); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	n, err = ix.DocCount()
	if err != nil {
		t.Fatalf("DocCount: %v", err)
	}
	if n != 1 {
		t.Fatalf("DocCount after rebuild = %d, want 1", n)
	}

	hits, err := ix.Search("scholarships", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits for removed document, got %d", len(hits))
	}
}

func TestIndex_SearchEmptyIndex(t *testing.T) {
	ix := newTestIndex(t)

	hits, err := ix.Search("anything", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits on empty index, got %d", len(hits))
	}
}

func TestIndex_NilMetadataTolerated(t *testing.T) {
	ix := newTestIndex(t)

	docs := []string{"doc with metadata", "doc without metadata"}
	metas := []map[string]any{{"source": "a.txt"}, nil}
	if err := ix.Rebuild(docs, metas); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	hits, err := ix.Search("metadata", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
}
