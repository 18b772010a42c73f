// Package assistant wires retrieval and answer composition into the
// query-to-answer flow.
package assistant

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Timeless-inc/Tango/internal/answer"
	"github.com/Timeless-inc/Tango/internal/config"
	"github.com/Timeless-inc/Tango/internal/models"
	"github.com/Timeless-inc/Tango/internal/retrieval"
	"github.com/Timeless-inc/Tango/internal/vectordb"
)

// Service answers questions from the knowledge base and feeds documents into it.
type Service struct {
	store     *vectordb.Collection
	filter    *retrieval.Filter
	composer  *answer.Composer
	topK      int
	fallbackN int
	logger    *zap.Logger
}

// NewService creates the assistant service.
func NewService(
	store *vectordb.Collection,
	filter *retrieval.Filter,
	composer *answer.Composer,
	cfg *config.RetrievalConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:     store,
		filter:    filter,
		composer:  composer,
		topK:      cfg.TopK,
		fallbackN: cfg.FallbackResults,
		logger:    logger,
	}
}

// Answer retrieves candidates for the query, filters them for relevance, and
// composes the reply. An empty filtered set yields the fixed
// insufficient-information response with no sources.
func (s *Service) Answer(ctx context.Context, req *models.QueryRequest) (*models.QueryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	topK := s.topK
	if req.TopK > 0 {
		topK = req.TopK
	}

	hits, err := s.store.Query(ctx, req.Query, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	kept := s.filter.Apply(req.Query, hits, s.fallbackN)

	docs := make([]string, len(kept))
	for i, hit := range kept {
		docs[i] = hit.Text
	}
	text, sources := s.composer.Compose(req.Query, docs)

	s.logger.Debug("answered query",
		zap.String("query", req.Query),
		zap.Int("retrieved", len(hits)),
		zap.Int("kept", len(kept)),
		zap.Int("sources", len(sources)),
	)
	return &models.QueryResponse{Response: text, Sources: sources}, nil
}

// Seed resolves the batch input and adds the documents to the store,
// returning the assigned ids. An empty batch returns an empty id slice.
func (s *Service) Seed(ctx context.Context, batch *models.DocumentBatch) ([]int, error) {
	texts, metas := batch.Resolve()
	ids, err := s.store.Add(ctx, texts, metas)
	if err != nil {
		return nil, err
	}
	s.logger.Info("seeded knowledge base", zap.Int("documents", len(ids)), zap.Int("total", s.store.Count()))
	return ids, nil
}
