// Package server provides the HTTP API for Tango.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Timeless-inc/Tango/internal/assistant"
	"github.com/Timeless-inc/Tango/internal/config"
	"github.com/Timeless-inc/Tango/internal/history"
	"github.com/Timeless-inc/Tango/internal/ingest"
	"github.com/Timeless-inc/Tango/internal/keyword"
	"github.com/Timeless-inc/Tango/internal/vectordb"
)

// Server is the HTTP server for the Tango API.
type Server struct {
	service  *assistant.Service
	store    *vectordb.Collection
	ingestor *ingest.Ingestor
	keyword  *keyword.Index
	history  *history.Store
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies. keyword and
// history may be nil; the matching endpoints then report not implemented.
func NewServer(
	service *assistant.Service,
	store *vectordb.Collection,
	ingestor *ingest.Ingestor,
	kw *keyword.Index,
	hist *history.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		service:  service,
		store:    store,
		ingestor: ingestor,
		keyword:  kw,
		history:  hist,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/query", s.handleQuery)
	r.Post("/api/v1/documents", s.handleAddDocuments)
	r.Get("/api/v1/documents", s.handleListDocuments)
	r.Delete("/api/v1/documents", s.handleDeleteDocuments)
	r.Get("/api/v1/documents/search", s.handleKeywordSearch)
	r.Post("/api/v1/reset", s.handleReset)
	r.Post("/api/v1/ingest", s.handleIngest)
	r.Get("/api/v1/history", s.handleHistory)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// RefreshKeywordIndex rebuilds the keyword index from the current collection
// contents. Call after any mutation of the store.
func (s *Server) RefreshKeywordIndex() {
	if s.keyword == nil {
		return
	}
	docs, metas := s.store.Documents()
	if err := s.keyword.Rebuild(docs, metas); err != nil {
		s.logger.Error("keyword index rebuild failed", zap.Error(err))
	}
}
