package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_IngestsMatchingFiles(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var ingested []string
	onFile := func(path string) {
		mu.Lock()
		ingested = append(ingested, path)
		mu.Unlock()
	}

	w := New([]string{dir}, []string{".txt"}, onFile, nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	txtPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txtPath, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	// Non-matching extension must be ignored.
	if err := os.WriteFile(filepath.Join(dir, "image.png"), []byte{1, 2}, 0644); err != nil {
		t.Fatal(err)
	}

	ok := waitFor(t, 3*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ingested) >= 1
	})
	if !ok {
		t.Fatal("timed out waiting for ingest callback")
	}

	mu.Lock()
	defer mu.Unlock()
	for _, p := range ingested {
		if filepath.Ext(p) != ".txt" {
			t.Errorf("ingested non-matching file %q", p)
		}
	}
	if ingested[0] != txtPath {
		t.Errorf("ingested %q, want %q", ingested[0], txtPath)
	}
}

func TestWatcher_RemoveCallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var removed []string
	onRemove := func(p string) {
		mu.Lock()
		removed = append(removed, p)
		mu.Unlock()
	}

	w := New([]string{dir}, []string{".md"}, nil, onRemove, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	ok := waitFor(t, 3*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(removed) == 1 && removed[0] == path
	})
	if !ok {
		t.Fatalf("timed out waiting for remove callback, got %v", removed)
	}
}

func TestWatcher_SyncExisting(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.pdf"), []byte("b"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "skip.png"), []byte("c"), 0644); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var seen []string
	w := New([]string{dir}, []string{".txt", ".pdf"}, func(p string) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	}, nil, zap.NewNop())

	w.SyncExisting()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Fatalf("SyncExisting saw %d files, want 2: %v", len(seen), seen)
	}
}

func TestWatcher_StartCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "incoming")

	w := New([]string{root}, nil, nil, nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if _, err := os.Stat(root); err != nil {
		t.Errorf("expected root to be created: %v", err)
	}
	dirs := w.Directories()
	if len(dirs) != 1 || dirs[0] != root {
		t.Errorf("Directories() = %v", dirs)
	}
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		path string
		exts []string
		want bool
	}{
		{"a/b.txt", []string{".txt"}, true},
		{"a/b.TXT", []string{".txt"}, true},
		{"a/b.txt", []string{"txt"}, true},
		{"a/b.png", []string{".txt", ".md"}, false},
		{"a/b.anything", nil, true},
	}
	for _, tt := range tests {
		if got := matchExtension(tt.path, tt.exts); got != tt.want {
			t.Errorf("matchExtension(%q, %v) = %v, want %v", tt.path, tt.exts, got, tt.want)
		}
	}
}
