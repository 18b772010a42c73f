package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/Timeless-inc/Tango/internal/history"
	"github.com/Timeless-inc/Tango/internal/models"
	"github.com/Timeless-inc/Tango/pkg/utils"
)

// maxUploadBytes caps ingest upload size at 32 MiB.
const maxUploadBytes = 32 << 20

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := s.service.Answer(r.Context(), &req)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			s.respondError(w, http.StatusBadRequest, verr.Error())
			return
		}
		s.logger.Error("query failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.history != nil {
		if _, err := s.history.Record(r.Context(), req.Query, resp.Response, resp.Sources); err != nil {
			s.logger.Error("failed to record exchange", zap.Error(err))
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddDocuments(w http.ResponseWriter, r *http.Request) {
	var batch models.DocumentBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ids, err := s.service.Seed(r.Context(), &batch)
	if err != nil {
		s.logger.Error("add documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.RefreshKeywordIndex()
	s.respondJSON(w, http.StatusCreated, map[string]any{
		"ids":   ids,
		"count": len(ids),
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, metas := s.store.Documents()

	resp := models.DocumentListResponse{
		Documents:       make([]models.DocumentItem, 0, len(docs)),
		GroupedBySource: make(map[string][]int),
		TotalDocuments:  len(docs),
	}
	for i, doc := range docs {
		item := models.DocumentItem{
			ID:      i,
			Preview: utils.Truncate(doc, 100),
			Content: doc,
		}
		if i < len(metas) && metas[i] != nil {
			item.Metadata = metas[i]
			item.Source, _ = metas[i]["source"].(string)
			item.Title, _ = metas[i]["title"].(string)
		}
		resp.Documents = append(resp.Documents, item)
		if item.Source != "" {
			resp.GroupedBySource[item.Source] = append(resp.GroupedBySource[item.Source], i)
		}
	}
	resp.UniqueSources = len(resp.GroupedBySource)
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteDocuments(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ok, err := s.store.Delete(r.Context(), req.IDs)
	if err != nil {
		s.logger.Error("delete failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if ok {
		s.RefreshKeywordIndex()
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"deleted":   ok,
		"remaining": s.store.Count(),
	})
}

func (s *Server) handleKeywordSearch(w http.ResponseWriter, r *http.Request) {
	if s.keyword == nil {
		s.respondError(w, http.StatusNotImplemented, "keyword search not enabled")
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	hits, err := s.keyword.Search(query, limit)
	if err != nil {
		s.logger.Error("keyword search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"query": query,
		"hits":  hits,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req models.ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Confirm {
		s.respondError(w, http.StatusBadRequest, "reset requires confirm: true")
		return
	}
	if _, err := s.store.Reset(r.Context()); err != nil {
		s.logger.Error("reset failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.RefreshKeywordIndex()
	s.logger.Info("knowledge base reset")
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing multipart file field")
		return
	}
	defer func() { _ = file.Close() }()

	if !s.ingestor.Supported(header.Filename) {
		s.respondError(w, http.StatusBadRequest, "unsupported file type: "+header.Filename)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	ids, err := s.ingestor.IngestBytes(r.Context(), header.Filename, data)
	if err != nil {
		s.logger.Error("ingest failed", zap.String("filename", header.Filename), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{
		"filename": header.Filename,
		"chunks":   len(ids),
		"ids":      ids,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, http.StatusNotImplemented, "history not enabled")
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	exchanges, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("history read failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"exchanges": exchanges})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"collection": s.config.Storage.Collection,
		"documents":  s.store.Count(),
	}
	if s.keyword != nil {
		if n, err := s.keyword.DocCount(); err == nil {
			resp["keyword_indexed"] = n
		}
	}
	if s.history != nil {
		if n, err := s.history.Count(r.Context()); err == nil {
			resp["exchanges"] = n
		}
	}
	if diskBytes, err := history.DiskUsageBytes(
		s.config.Storage.DataDir,
		s.config.Storage.DatabasePath,
	); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = map[string]any{
		"embedding_model":      s.config.Embedding.Model,
		"embedding_dimensions": s.config.Embedding.Dimensions,
		"chunk_size":           s.config.Watch.ChunkSize,
		"data_dir":             s.config.Storage.DataDir,
		"database_path":        s.config.Storage.DatabasePath,
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
