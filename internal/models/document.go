// Package models defines core data structures for documents, queries, and answers.
package models

import (
	"encoding/json"
	"fmt"
)

// DocumentInput is one document submitted for indexing. It accepts two wire
// shapes: a bare JSON string, or an object {"text": ..., "metadata": {...}}.
// The union is resolved here, at the ingestion boundary, so the store only
// ever sees text plus an optional metadata map.
type DocumentInput struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// UnmarshalJSON accepts either a plain string or a {text, metadata} object.
func (d *DocumentInput) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		d.Text = raw
		d.Metadata = nil
		return nil
	}
	type alias DocumentInput
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("document must be a string or an object with a text field: %w", err)
	}
	if obj.Text == "" {
		return fmt.Errorf("document object missing text field")
	}
	*d = DocumentInput(obj)
	return nil
}

// DocumentBatch is the request body for adding documents.
// Metadata, when set, overrides per-document metadata positionally.
type DocumentBatch struct {
	Documents []DocumentInput  `json:"documents"`
	Metadata  []map[string]any `json:"metadata,omitempty"`
}

// Resolve returns parallel text and metadata slices for the store.
// The batch-level Metadata slice, when present, wins over per-document metadata.
func (b *DocumentBatch) Resolve() ([]string, []map[string]any) {
	texts := make([]string, 0, len(b.Documents))
	metas := make([]map[string]any, 0, len(b.Documents))
	for i, doc := range b.Documents {
		texts = append(texts, doc.Text)
		if b.Metadata != nil && i < len(b.Metadata) {
			metas = append(metas, b.Metadata[i])
		} else {
			metas = append(metas, doc.Metadata)
		}
	}
	return texts, metas
}

// DocumentItem is one stored document as returned by the listing endpoint.
// IDs are positional and unstable across deletes; treat them as a snapshot.
type DocumentItem struct {
	ID       int            `json:"id"`
	Preview  string         `json:"preview"`
	Content  string         `json:"content"`
	Source   string         `json:"source,omitempty"`
	Title    string         `json:"title,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// DocumentListResponse is the response for the document listing endpoint.
type DocumentListResponse struct {
	Documents       []DocumentItem   `json:"documents"`
	GroupedBySource map[string][]int `json:"grouped_by_source"`
	TotalDocuments  int              `json:"total_documents"`
	UniqueSources   int              `json:"unique_sources"`
}

// DeleteRequest is the request body for deleting documents by id.
type DeleteRequest struct {
	IDs []int `json:"ids"`
}

// ResetRequest is the request body for wiping the knowledge base.
// Confirm must be true; the handler rejects the request otherwise.
type ResetRequest struct {
	Confirm bool `json:"confirm"`
}
