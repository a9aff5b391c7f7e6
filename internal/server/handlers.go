package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/ledgerlens/internal/config"
	"github.com/hyperjump/ledgerlens/internal/keyword"
	"github.com/hyperjump/ledgerlens/internal/models"
	"github.com/hyperjump/ledgerlens/internal/storage"
	"go.uber.org/zap"
)

const (
	defaultKeywordLimit = 10
	defaultListLimit    = 50
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query, err := s.parseSearchQuery(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.search(w, r, query)
}

// searchBody is the POST /search payload. A nil TopK means the key was absent.
type searchBody struct {
	Query   string          `json:"query"`
	TopK    *int            `json:"top_k"`
	Filters *models.Filters `json:"filters,omitempty"`
}

func (s *Server) handleSearchJSON(w http.ResponseWriter, r *http.Request) {
	var body searchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	query := &models.SearchQuery{Query: body.Query, TopK: s.defaultTopK(), Filters: body.Filters}
	if body.TopK != nil {
		query.TopK = *body.TopK
	}
	s.search(w, r, query)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, query *models.SearchQuery) {
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("top_k", query.TopK))
	response, err := s.engine.Query(r.Context(), query)
	if err != nil {
		s.respondErr(w, "search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

// parseSearchQuery reads query, top_k and the optional filter parameters.
func (s *Server) parseSearchQuery(v url.Values) (*models.SearchQuery, error) {
	q := &models.SearchQuery{Query: v.Get("query"), TopK: s.defaultTopK()}
	if raw := v.Get("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("top_k must be an integer")
		}
		q.TopK = n
	}

	f := &models.Filters{}
	for _, p := range []struct {
		name string
		dst  **float64
	}{{"min_amount", &f.MinAmount}, {"max_amount", &f.MaxAmount}} {
		if raw := v.Get(p.name); raw != "" {
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%s must be a number", p.name)
			}
			*p.dst = &n
		}
	}
	if raw := v.Get("type"); raw != "" {
		d := models.Direction(raw)
		if d != models.Credit && d != models.Debit {
			return nil, fmt.Errorf("type must be Credit or Debit")
		}
		f.Type = &d
	}
	for _, p := range []struct {
		name string
		dst  **string
	}{
		{"category", &f.Category},
		{"user_id", &f.UserID},
		{"month", &f.Month},
		{"description_contains", &f.DescriptionContains},
	} {
		if raw := v.Get(p.name); raw != "" {
			*p.dst = &raw
		}
	}
	if !f.Empty() {
		q.Filters = f
	}
	return q, nil
}

func (s *Server) defaultTopK() int {
	if s.config != nil && s.config.Search.DefaultTopK > 0 {
		return s.config.Search.DefaultTopK
	}
	return models.DefaultTopK
}

func (s *Server) handleKeyword(w http.ResponseWriter, r *http.Request) {
	if s.keyword == nil || s.storage == nil {
		s.respondError(w, http.StatusServiceUnavailable, "keyword index not available")
		return
	}
	v := r.URL.Query()
	q := strings.TrimSpace(v.Get("q"))
	if q == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit, err := intParam(v, "limit", defaultKeywordLimit)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := &keyword.SearchOptions{
		DescriptionBoost: 2.0,
		FuzzyEnabled:     v.Get("fuzzy") == "true",
		UserID:           v.Get("user_id"),
	}
	hits, err := s.keyword.Search(r.Context(), q, limit, opts)
	if err != nil {
		s.respondErr(w, "keyword search failed", err)
		return
	}

	type keywordHit struct {
		models.Transaction
		Score float64 `json:"score"`
	}
	out := make([]keywordHit, 0, len(hits))
	for _, h := range hits {
		t, err := s.storage.GetTransaction(r.Context(), h.ID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				continue
			}
			s.respondErr(w, "keyword lookup failed", err)
			return
		}
		out = append(out, keywordHit{Transaction: *t, Score: h.Score})
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"query":         q,
		"results_found": len(out),
		"results":       out,
	})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		s.respondError(w, http.StatusServiceUnavailable, "storage not available")
		return
	}
	id := chi.URLParam(r, "id")
	t, err := s.storage.GetTransaction(r.Context(), id)
	if err != nil {
		s.respondErr(w, "get transaction failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		s.respondError(w, http.StatusServiceUnavailable, "storage not available")
		return
	}
	v := r.URL.Query()
	offset, err := intParam(v, "offset", 0)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := intParam(v, "limit", defaultListLimit)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := storage.ListOptions{UserID: v.Get("user_id"), Offset: offset, Limit: limit}
	txns, err := s.storage.ListTransactions(r.Context(), opts)
	if err != nil {
		s.respondErr(w, "list transactions failed", err)
		return
	}
	total, err := s.storage.CountTransactions(r.Context(), opts.UserID)
	if err != nil {
		s.respondErr(w, "count transactions failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":        total,
		"offset":       offset,
		"limit":        limit,
		"transactions": txns,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if !s.engine.Ready() {
		status = "initializing"
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": status, "engine": s.engine.State().String()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"index": s.engine.Info(),
	}
	if s.keyword != nil {
		if n, err := s.keyword.DocCount(); err == nil {
			resp["keyword_documents"] = n
		}
	}
	if s.config != nil {
		st := s.config.Storage
		resp["config"] = map[string]interface{}{
			"embedding_backend":    s.config.Embedding.Backend,
			"embedding_dimensions": s.config.Embedding.Dimensions,
			"vector_index_type":    s.config.Vector.IndexType,
			"data_path":            st.DataPath,
			"database_path":        st.DatabasePath,
			"index_path":           st.IndexPath,
			"metadata_path":        st.MetadataPath,
		}
		usage, err := storage.MeasureDiskUsage(artifacts(st))
		if err == nil {
			resp["disk_usage"] = usage
		} else {
			s.logger.Warn("status: disk usage failed", zap.Error(err))
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if s.indexer == nil {
		s.respondError(w, http.StatusServiceUnavailable, "indexer not available")
		return
	}
	info, err := s.indexer.Rebuild(r.Context())
	if err != nil {
		s.respondErr(w, "rebuild failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, info)
}

func intParam(v url.Values, name string, def int) (int, error) {
	raw := v.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrRebuildInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondErr(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	} else {
		s.logger.Debug(msg, zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func artifacts(st config.StorageConfig) storage.Artifacts {
	return storage.Artifacts{
		DataPath:     st.DataPath,
		DatabasePath: st.DatabasePath,
		IndexPath:    st.IndexPath,
		MetadataPath: st.MetadataPath,
	}
}
