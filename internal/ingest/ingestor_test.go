package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Timeless-inc/Tango/internal/embedding"
	"github.com/Timeless-inc/Tango/internal/vectordb"
)

func newTestIngestor(t *testing.T, onChange func()) (*Ingestor, *vectordb.Collection) {
	t.Helper()
	store := vectordb.NewCollection("test_knowledge", t.TempDir(), embedding.NewMockEmbedder(8))
	if err := store.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return NewIngestor(store, 1000, onChange, zap.NewNop()), store
}

func TestIngestor_IngestFile(t *testing.T) {
	changes := 0
	ing, store := newTestIngestor(t, func() { changes++ })

	dir := t.TempDir()
	path := filepath.Join(dir, "handbook.txt")
	content := "The library opens at 8am. Tuition is due monthly. Exams run in December."
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	ids, err := ing.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if len(ids) == 0 {
		t.Fatal("expected at least one chunk id")
	}
	if store.Count() != len(ids) {
		t.Errorf("store count = %d, want %d", store.Count(), len(ids))
	}
	if changes != 1 {
		t.Errorf("onChange fired %d times, want 1", changes)
	}

	docs, metas := store.Documents()
	if !strings.Contains(docs[0], "Source: handbook.txt") {
		t.Errorf("chunk missing source header: %q", docs[0])
	}
	if metas[0]["source"] != "handbook.txt" {
		t.Errorf("chunk source metadata = %v", metas[0]["source"])
	}
	if metas[0]["title"] != "handbook" {
		t.Errorf("chunk title metadata = %v", metas[0]["title"])
	}
}

func TestIngestor_ReingestReplacesChunks(t *testing.T) {
	ing, store := newTestIngestor(t, nil)

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(path, []byte("Original content about scholarships."), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ing.IngestFile(context.Background(), path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	first := store.Count()

	if err := os.WriteFile(path, []byte("Updated content about scholarships and exams."), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ing.IngestFile(context.Background(), path); err != nil {
		t.Fatalf("IngestFile (second): %v", err)
	}
	if store.Count() != first {
		t.Errorf("re-ingest changed count from %d to %d, want replacement", first, store.Count())
	}
	docs, _ := store.Documents()
	joined := strings.Join(docs, "\n")
	if strings.Contains(joined, "Original content") {
		t.Error("stale chunks from first ingest survived re-ingest")
	}
	if !strings.Contains(joined, "Updated content") {
		t.Error("updated content not stored")
	}
}

func TestIngestor_IngestBytes(t *testing.T) {
	ing, _ := newTestIngestor(t, nil)

	ids, err := ing.IngestBytes(context.Background(), "upload.txt", []byte("Campus parking requires a permit."))
	if err != nil {
		t.Fatalf("IngestBytes: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("got %d ids, want 1", len(ids))
	}
}

func TestIngestor_UnsupportedFile(t *testing.T) {
	ing, _ := newTestIngestor(t, nil)

	if ing.Supported("report.xlsx") {
		t.Error("xlsx should not be supported")
	}
	if _, err := ing.IngestBytes(context.Background(), "report.xlsx", []byte("x")); err == nil {
		t.Error("expected error for unsupported file type")
	}
}

func TestIngestor_EmptyFile(t *testing.T) {
	ing, _ := newTestIngestor(t, nil)

	if _, err := ing.IngestBytes(context.Background(), "empty.txt", []byte("   \n  ")); err == nil {
		t.Error("expected error for file with no text content")
	}
}

func TestIngestor_RemoveSource(t *testing.T) {
	changes := 0
	ing, store := newTestIngestor(t, func() { changes++ })
	ctx := context.Background()

	if _, err := ing.IngestBytes(ctx, "a.txt", []byte("Doc A about the library.")); err != nil {
		t.Fatal(err)
	}
	if _, err := ing.IngestBytes(ctx, "b.txt", []byte("Doc B about tuition.")); err != nil {
		t.Fatal(err)
	}

	n, err := ing.RemoveSource(ctx, "a.txt")
	if err != nil {
		t.Fatalf("RemoveSource: %v", err)
	}
	if n != 1 {
		t.Errorf("removed %d chunks, want 1", n)
	}
	if store.Count() != 1 {
		t.Errorf("store count = %d, want 1", store.Count())
	}
	if changes != 3 {
		t.Errorf("onChange fired %d times, want 3", changes)
	}

	// Removing an unknown source is a no-op.
	n, err = ing.RemoveSource(ctx, "missing.txt")
	if err != nil {
		t.Fatalf("RemoveSource missing: %v", err)
	}
	if n != 0 {
		t.Errorf("removed %d chunks for unknown source, want 0", n)
	}
}
