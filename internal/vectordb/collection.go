// Package vectordb provides the persisted vector collection: embedding
// storage, brute-force cosine similarity search, and mutation.
package vectordb

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Timeless-inc/Tango/internal/embedding"
	"github.com/Timeless-inc/Tango/pkg/utils"
)

// Result is a single similarity hit: the document text, its cosine similarity
// to the query (roughly [-1,1], 1 = identical direction), and its metadata.
type Result struct {
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Collection is a named set of documents sharing one embedding space. It holds
// three parallel structures: document texts, unit-normalized embedding rows,
// and per-document metadata. The parallel-length invariant is maintained by
// every mutation, and every mutation is persisted before it returns.
//
// Document ids are positions into these structures at the time of the last
// mutation. Deletes compact and renumber, so ids are a snapshot, not a key.
//
// A single RWMutex serializes mutations (which hold the write lock across the
// whole embed-mutate-persist sequence) and lets queries score over a
// consistent snapshot under the read lock.
type Collection struct {
	name     string
	dataDir  string
	embedder embedding.Embedder

	mu      sync.RWMutex
	loaded  bool
	docs    []string
	vectors [][]float32
	meta    []map[string]any
}

// NewCollection creates a handle for the named collection under dataDir.
// No I/O happens until Open or the first operation.
func NewCollection(name, dataDir string, embedder embedding.Embedder) *Collection {
	return &Collection{
		name:     name,
		dataDir:  dataDir,
		embedder: embedder,
	}
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Open loads the persisted collection, or starts an empty one when no
// artifacts exist yet. Call once from the composition root; operations also
// load lazily on first use.
func (c *Collection) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureLoadedLocked()
}

// ensureLoadedLocked loads state from disk if not yet loaded. Caller holds the write lock.
func (c *Collection) ensureLoadedLocked() error {
	if c.loaded {
		return nil
	}
	docs, vectors, meta, err := c.load()
	if err != nil {
		return err
	}
	c.docs = docs
	c.vectors = vectors
	c.meta = meta
	c.loaded = true
	return nil
}

// Add embeds texts, normalizes the vectors, appends all three parallel
// structures, persists, and returns the assigned positional ids
// [oldCount, oldCount+len(texts)). An empty texts slice is a no-op returning
// an empty id slice. metadatas may be nil or must be parallel to texts.
// On any error the in-memory and persisted state are unchanged.
func (c *Collection) Add(ctx context.Context, texts []string, metadatas []map[string]any) ([]int, error) {
	if len(texts) == 0 {
		return []int{}, nil
	}
	if metadatas == nil {
		metadatas = make([]map[string]any, len(texts))
	}
	if len(metadatas) != len(texts) {
		return nil, fmt.Errorf("metadatas length %d does not match texts length %d", len(metadatas), len(texts))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLoadedLocked(); err != nil {
		return nil, err
	}

	embedded, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	dim := c.embedder.Dimensions()
	for i, vec := range embedded {
		if len(vec) != dim {
			return nil, fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(vec), dim)
		}
	}

	oldCount := len(c.docs)
	docs := append(append([]string{}, c.docs...), texts...)
	meta := append(append([]map[string]any{}, c.meta...), metadatas...)
	vectors := append([][]float32{}, c.vectors...)
	for _, vec := range embedded {
		row := make([]float32, dim)
		copy(row, vec)
		utils.NormalizeL2(row)
		vectors = append(vectors, row)
	}

	if err := c.save(docs, vectors, meta); err != nil {
		return nil, err
	}
	c.docs, c.vectors, c.meta = docs, vectors, meta

	ids := make([]int, len(texts))
	for i := range ids {
		ids[i] = oldCount + i
	}
	return ids, nil
}

// Query embeds the query text and returns the top min(k, count) stored
// documents by cosine similarity, descending. An empty collection yields an
// empty result slice, not an error, without calling the embedder at all.
func (c *Collection) Query(ctx context.Context, text string, k int) ([]Result, error) {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if !loaded {
		c.mu.Lock()
		err := c.ensureLoadedLocked()
		c.mu.Unlock()
		if err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	empty := len(c.docs) == 0
	c.mu.RUnlock()
	if k <= 0 || empty {
		return []Result{}, nil
	}

	embedded, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	// The embedder may hand out a slice it still owns (the cache does), so
	// normalize a private copy.
	query := make([]float32, len(embedded))
	copy(query, embedded)
	utils.NormalizeL2(query)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.docs) == 0 {
		return []Result{}, nil
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(c.vectors))
	for i, row := range c.vectors {
		dot := utils.Dot(query, row)
		// Stored rows are normalized at insertion, but persisted artifacts
		// may predate that; renormalize the score rather than trusting it.
		if norm := utils.L2Norm(row); norm > 0 && norm != 1 {
			dot /= norm
		}
		scores[i] = scored{idx: i, score: dot}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if k > len(scores) {
		k = len(scores)
	}
	results := make([]Result, k)
	for i := 0; i < k; i++ {
		s := scores[i]
		results[i] = Result{
			Text:     c.docs[s.idx],
			Score:    s.score,
			Metadata: c.meta[s.idx],
		}
	}
	return results, nil
}

// Delete removes the documents at the given positions and compacts all three
// parallel structures, renumbering the survivors. Out-of-range ids are
// dropped silently. Returns false (with nil error) when the collection is
// empty or ids is empty; this is a lightweight failure, not a fault.
func (c *Collection) Delete(ctx context.Context, ids []int) (bool, error) {
	if len(ids) == 0 {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLoadedLocked(); err != nil {
		return false, err
	}
	if len(c.docs) == 0 {
		return false, nil
	}

	drop := make(map[int]bool, len(ids))
	for _, id := range ids {
		if id >= 0 && id < len(c.docs) {
			drop[id] = true
		}
	}

	docs := make([]string, 0, len(c.docs)-len(drop))
	vectors := make([][]float32, 0, len(c.vectors)-len(drop))
	meta := make([]map[string]any, 0, len(c.meta)-len(drop))
	for i := range c.docs {
		if drop[i] {
			continue
		}
		docs = append(docs, c.docs[i])
		vectors = append(vectors, c.vectors[i])
		meta = append(meta, c.meta[i])
	}

	if err := c.save(docs, vectors, meta); err != nil {
		return false, err
	}
	c.docs, c.vectors, c.meta = docs, vectors, meta
	return true, nil
}

// Reset replaces the collection with empty structures (the embedding
// dimension is retained by the persisted artifact header) and persists.
func (c *Collection) Reset(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	docs := []string{}
	vectors := [][]float32{}
	meta := []map[string]any{}
	if err := c.save(docs, vectors, meta); err != nil {
		return false, err
	}
	c.docs, c.vectors, c.meta = docs, vectors, meta
	c.loaded = true
	return true, nil
}

// Count returns the number of stored documents.
func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// Documents returns a snapshot copy of the document texts and metadata,
// index-aligned with the current positional ids.
func (c *Collection) Documents() ([]string, []map[string]any) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	docs := make([]string, len(c.docs))
	copy(docs, c.docs)
	meta := make([]map[string]any, len(c.meta))
	copy(meta, c.meta)
	return docs, meta
}

// IDsBySource returns the current positional ids of documents whose metadata
// "source" entry equals source. Used by the watcher to drop chunks of a
// removed file.
func (c *Collection) IDsBySource(source string) []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var ids []int
	for i, m := range c.meta {
		if m == nil {
			continue
		}
		if s, ok := m["source"].(string); ok && s == source {
			ids = append(ids, i)
		}
	}
	return ids
}
