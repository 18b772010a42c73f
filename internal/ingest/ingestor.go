package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Timeless-inc/Tango/internal/extract"
	"github.com/Timeless-inc/Tango/internal/vectordb"
)

// Ingestor runs the file ingestion pipeline: extract text, chunk it, and
// store the chunks with embeddings. An optional onChange hook fires after
// every successful mutation, for keeping derived indexes in sync.
type Ingestor struct {
	extractor *extract.Extractor
	chunker   *Chunker
	store     *vectordb.Collection
	onChange  func()
	logger    *zap.Logger
}

// NewIngestor creates an ingestor writing into store. onChange may be nil.
func NewIngestor(store *vectordb.Collection, chunkSize int, onChange func(), logger *zap.Logger) *Ingestor {
	return &Ingestor{
		extractor: extract.NewExtractor(),
		chunker:   NewChunker(chunkSize),
		store:     store,
		onChange:  onChange,
		logger:    logger,
	}
}

// Supported reports whether files with the given name can be ingested.
func (in *Ingestor) Supported(filename string) bool {
	return in.extractor.Supported(filepath.Ext(filename))
}

// IngestFile extracts, chunks, and stores the file at path. Chunks from a
// previous ingest of the same source are replaced. Returns the assigned
// chunk ids.
func (in *Ingestor) IngestFile(ctx context.Context, path string) ([]int, error) {
	text, err := in.extractor.Extract(path)
	if err != nil {
		return nil, err
	}
	return in.ingestText(ctx, text, filepath.Base(path))
}

// IngestBytes ingests raw file content under the given filename. The
// filename's extension selects the extractor and its base name becomes the
// chunk source.
func (in *Ingestor) IngestBytes(ctx context.Context, filename string, data []byte) ([]int, error) {
	text, err := in.extractor.ExtractBytes(data, filepath.Ext(filename))
	if err != nil {
		return nil, err
	}
	return in.ingestText(ctx, text, filepath.Base(filename))
}

func (in *Ingestor) ingestText(ctx context.Context, text, source string) ([]int, error) {
	title := strings.TrimSuffix(source, filepath.Ext(source))
	chunks := in.chunker.Chunk(text, title, source)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no text content in %s", source)
	}

	// Re-ingesting a file replaces its previous chunks.
	if stale := in.store.IDsBySource(source); len(stale) > 0 {
		if _, err := in.store.Delete(ctx, stale); err != nil {
			return nil, fmt.Errorf("failed to replace existing chunks for %s: %w", source, err)
		}
	}

	texts := make([]string, len(chunks))
	metas := make([]map[string]any, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
		metas[i] = ch.Metadata
	}
	ids, err := in.store.Add(ctx, texts, metas)
	if err != nil {
		return nil, err
	}

	in.logger.Info("ingested file",
		zap.String("source", source),
		zap.Int("chunks", len(ids)))
	if in.onChange != nil {
		in.onChange()
	}
	return ids, nil
}

// RemoveSource deletes all chunks that came from the given source file.
// Returns the number of chunks removed.
func (in *Ingestor) RemoveSource(ctx context.Context, source string) (int, error) {
	ids := in.store.IDsBySource(source)
	if len(ids) == 0 {
		return 0, nil
	}
	if _, err := in.store.Delete(ctx, ids); err != nil {
		return 0, err
	}
	in.logger.Info("removed source",
		zap.String("source", source),
		zap.Int("chunks", len(ids)))
	if in.onChange != nil {
		in.onChange()
	}
	return len(ids), nil
}
