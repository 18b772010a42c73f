// Package keyword provides a Bleve keyword index over the stored documents.
//
// The index lives in memory and is rebuilt from the collection snapshot after
// every mutation. Document ids are positional and get renumbered on delete, so
// incremental sync would buy nothing at the corpus sizes this serves. Keyword
// search backs the admin search endpoint only; answering queries goes through
// the vector store.
package keyword

import (
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/Timeless-inc/Tango/pkg/utils"
)

// Hit is a single keyword search result.
type Hit struct {
	ID      int     `json:"id"`
	Score   float64 `json:"score"`
	Preview string  `json:"preview"`
	Source  string  `json:"source,omitempty"`
}

// indexedDoc is the shape handed to Bleve for each stored document.
type indexedDoc struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	Title   string `json:"title"`
}

// Index is an in-memory Bleve index keyed by positional document id.
type Index struct {
	index bleve.Index
}

// New creates an empty in-memory index.
func New() (*Index, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so queries match
	// the exact word; stemming analyzers mangle names like "Tango" -> "tang".
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("source", keywordFieldMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create keyword index: %w", err)
	}
	return &Index{index: index}, nil
}

// Rebuild replaces the index contents with the given collection snapshot.
// docs and metas are parallel; metas entries may be nil.
func (ix *Index) Rebuild(docs []string, metas []map[string]any) error {
	batch := ix.index.NewBatch()

	count, err := ix.index.DocCount()
	if err != nil {
		return fmt.Errorf("failed to read keyword index size: %w", err)
	}
	for i := uint64(0); i < count; i++ {
		batch.Delete(strconv.FormatUint(i, 10))
	}

	for i, doc := range docs {
		entry := indexedDoc{Content: doc}
		if i < len(metas) && metas[i] != nil {
			entry.Source, _ = metas[i]["source"].(string)
			entry.Title, _ = metas[i]["title"].(string)
		}
		if err := batch.Index(strconv.Itoa(i), entry); err != nil {
			return fmt.Errorf("failed to index document %d: %w", i, err)
		}
	}
	if err := ix.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to apply keyword index batch: %w", err)
	}
	return nil
}

// Search runs a match query over content and title and returns up to limit hits.
func (ix *Index) Search(query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"content", "source"}

	results, err := ix.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	hits := make([]Hit, 0, len(results.Hits))
	for _, hit := range results.Hits {
		id, err := strconv.Atoi(hit.ID)
		if err != nil {
			continue
		}
		h := Hit{ID: id, Score: hit.Score}
		if content, ok := hit.Fields["content"].(string); ok {
			h.Preview = utils.Truncate(content, 100)
		}
		if source, ok := hit.Fields["source"].(string); ok {
			h.Source = source
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// DocCount returns the number of indexed documents.
func (ix *Index) DocCount() (uint64, error) {
	return ix.index.DocCount()
}

// Close releases the index.
func (ix *Index) Close() error {
	return ix.index.Close()
}
