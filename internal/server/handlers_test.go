package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/ledgerlens/internal/config"
	"github.com/hyperjump/ledgerlens/internal/embedding"
	"github.com/hyperjump/ledgerlens/internal/indexer"
	"github.com/hyperjump/ledgerlens/internal/keyword"
	"github.com/hyperjump/ledgerlens/internal/models"
	"github.com/hyperjump/ledgerlens/internal/search"
	"github.com/hyperjump/ledgerlens/internal/storage"
	"github.com/hyperjump/ledgerlens/internal/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dims = 384

type stubRebuilder struct {
	info models.IndexInfo
	err  error
}

func (s stubRebuilder) Rebuild(context.Context) (models.IndexInfo, error) { return s.info, s.err }

func records() []models.Transaction {
	return []models.Transaction{
		{ID: "txn_1001", UserID: "user_1", Date: "2024-01-05", Description: "UPI payment to Swiggy", Amount: 250, Type: models.Debit, Category: "Food", Method: "UPI"},
		{ID: "txn_1002", UserID: "user_1", Date: "2024-01-06", Description: "Card payment at Uber", Amount: 640, Type: models.Debit, Category: "Travel", Method: "Card"},
		{ID: "txn_1003", UserID: "user_2", Date: "2024-01-31", Description: "Salary credit from Company XYZ", Amount: 50000, Type: models.Credit, Category: "Salary", Method: "Other"},
		{ID: "txn_1004", UserID: "user_2", Date: "2024-02-02", Description: "Online payment to Zomato", Amount: 420, Type: models.Debit, Category: "Food", Method: "Online"},
	}
}

// newTestServer returns a server; when ready is set the engine serves records().
func newTestServer(t *testing.T, ready bool, rebuild Rebuilder) *Server {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.DataPath = filepath.Join(dir, "transactions.json")
	cfg.Storage.DatabasePath = filepath.Join(dir, "ledger.db")
	cfg.Storage.IndexPath = filepath.Join(dir, "transactions.index")
	cfg.Storage.MetadataPath = filepath.Join(dir, "transactions_meta.json")
	cfg.Embedding.Backend = config.BackendHash
	cfg.Embedding.Dimensions = dims

	provider, err := embedding.NewProvider(embedding.NewHashEmbedder(dims), dims)
	require.NoError(t, err)
	engine := search.NewEngine(provider)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	kw, err := keyword.NewBleveIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = kw.Close() })

	if ready {
		ctx := context.Background()
		require.NoError(t, store.ReplaceAll(ctx, records()))
		require.NoError(t, kw.ReplaceAll(ctx, records()))
		newVectors := func() (vector.VectorIndex, error) { return vector.NewMemoryIndex(dims) }
		idx := indexer.NewIndexer(provider, newVectors, storage.JSONSource{Path: cfg.Storage.DataPath}, engine)
		x, err := idx.Build(ctx, records())
		require.NoError(t, err)
		engine.Swap(x)
	}
	return NewServer(engine, rebuild, store, kw, cfg, nil)
}

func do(t *testing.T, s *Server, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Routes().ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v))
}

func TestHandleSearch(t *testing.T) {
	s := newTestServer(t, true, nil)
	w := do(t, s, http.MethodGet, "/api/v1/search?query=swiggy+food&top_k=2", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SearchResponse
	decode(t, w, &resp)
	assert.Equal(t, "swiggy food", resp.Query)
	assert.Equal(t, 2, resp.TopK)
	assert.Equal(t, 2, resp.ResultsFound)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "txn_1001", resp.Results[0].ID)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, 2, resp.Summary.TotalTransactions)
}

func TestHandleSearch_DefaultTopKAndFilters(t *testing.T) {
	s := newTestServer(t, true, nil)
	w := do(t, s, http.MethodGet, "/api/v1/search?query=payment&type=Debit&max_amount=500", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SearchResponse
	decode(t, w, &resp)
	assert.Equal(t, models.DefaultTopK, resp.TopK)
	for _, r := range resp.Results {
		assert.Equal(t, models.Debit, r.Type)
		assert.LessOrEqual(t, r.Amount.Float64(), 500.0)
	}
	assert.NotEmpty(t, resp.Results)
}

func TestHandleSearch_JSONBody(t *testing.T) {
	s := newTestServer(t, true, nil)
	w := do(t, s, http.MethodPost, "/api/v1/search",
		`{"query":"salary","top_k":3,"filters":{"user_id":"user_2","type":"Credit"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.SearchResponse
	decode(t, w, &resp)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "txn_1003", resp.Results[0].ID)
}

func TestHandleSearch_JSONBodyTopK(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		want     int
		wantTopK int
	}{
		{"absent top_k uses default", `{"query":"payment"}`, http.StatusOK, models.DefaultTopK},
		{"explicit top_k", `{"query":"payment","top_k":2}`, http.StatusOK, 2},
		{"explicit zero rejected", `{"query":"payment","top_k":0}`, http.StatusBadRequest, 0},
		{"negative rejected", `{"query":"payment","top_k":-1}`, http.StatusBadRequest, 0},
		{"malformed body", `{"query":`, http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, true, nil)
			w := do(t, s, http.MethodPost, "/api/v1/search", tt.body)
			require.Equal(t, tt.want, w.Code, w.Body.String())
			if tt.want != http.StatusOK {
				return
			}
			var resp models.SearchResponse
			decode(t, w, &resp)
			assert.Equal(t, tt.wantTopK, resp.TopK)
		})
	}
}

func TestHandleSearch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		ready  bool
		target string
		want   int
	}{
		{"missing query", true, "/api/v1/search", http.StatusBadRequest},
		{"blank query", true, "/api/v1/search?query=+++", http.StatusBadRequest},
		{"top_k zero", true, "/api/v1/search?query=food&top_k=0", http.StatusBadRequest},
		{"top_k too large", true, "/api/v1/search?query=food&top_k=201", http.StatusBadRequest},
		{"top_k not a number", true, "/api/v1/search?query=food&top_k=ten", http.StatusBadRequest},
		{"bad min_amount", true, "/api/v1/search?query=food&min_amount=abc", http.StatusBadRequest},
		{"bad type", true, "/api/v1/search?query=food&type=Transfer", http.StatusBadRequest},
		{"query too long", true, "/api/v1/search?query=" + strings.Repeat("a", 201), http.StatusBadRequest},
		{"not ready", false, "/api/v1/search?query=food", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.ready, nil)
			w := do(t, s, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			var body map[string]string
			decode(t, w, &body)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandleGetTransaction(t *testing.T) {
	s := newTestServer(t, true, nil)
	w := do(t, s, http.MethodGet, "/api/v1/transactions/txn_1003", "")
	require.Equal(t, http.StatusOK, w.Code)
	var txn models.Transaction
	decode(t, w, &txn)
	assert.Equal(t, "Salary", txn.Category)

	w = do(t, s, http.MethodGet, "/api/v1/transactions/txn_9999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleListTransactions(t *testing.T) {
	s := newTestServer(t, true, nil)
	w := do(t, s, http.MethodGet, "/api/v1/transactions?user_id=user_2&limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Total        int64                 `json:"total"`
		Transactions []*models.Transaction `json:"transactions"`
	}
	decode(t, w, &out)
	assert.Equal(t, int64(2), out.Total)
	require.Len(t, out.Transactions, 1)
	assert.Equal(t, "txn_1003", out.Transactions[0].ID)

	w = do(t, s, http.MethodGet, "/api/v1/transactions?offset=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleKeyword(t *testing.T) {
	s := newTestServer(t, true, nil)
	w := do(t, s, http.MethodGet, "/api/v1/keyword?q=zomato", "")
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		ResultsFound int `json:"results_found"`
		Results      []struct {
			ID    string  `json:"id"`
			Score float64 `json:"score"`
		} `json:"results"`
	}
	decode(t, w, &out)
	require.Equal(t, 1, out.ResultsFound)
	assert.Equal(t, "txn_1004", out.Results[0].ID)
	assert.Greater(t, out.Results[0].Score, 0.0)

	w = do(t, s, http.MethodGet, "/api/v1/keyword?q=zomatto&fuzzy=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &out)
	assert.Equal(t, 1, out.ResultsFound)

	w = do(t, s, http.MethodGet, "/api/v1/keyword", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleHealthAndStatus(t *testing.T) {
	s := newTestServer(t, false, nil)
	w := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]string
	decode(t, w, &health)
	assert.Equal(t, "initializing", health["status"])
	assert.Equal(t, "uninitialized", health["engine"])

	s = newTestServer(t, true, nil)
	w = do(t, s, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		Index            models.IndexInfo  `json:"index"`
		KeywordDocuments uint64            `json:"keyword_documents"`
		DiskUsage        storage.DiskUsage `json:"disk_usage"`
	}
	decode(t, w, &status)
	assert.True(t, status.Index.Ready)
	assert.Equal(t, 4, status.Index.TransactionCount)
	assert.Equal(t, dims, status.Index.Dimension)
	assert.NotEmpty(t, status.Index.BuildID)
	assert.Equal(t, uint64(4), status.KeywordDocuments)
	// only the database exists: the test index is built in memory and never persisted
	assert.Greater(t, status.DiskUsage.Database, int64(0))
	assert.Zero(t, status.DiskUsage.Index)
	assert.Equal(t, status.DiskUsage.Database, status.DiskUsage.Total)
}

func TestHandleRebuild(t *testing.T) {
	tests := []struct {
		name string
		rb   Rebuilder
		want int
	}{
		{"ok", stubRebuilder{info: models.IndexInfo{Ready: true, TransactionCount: 4, BuildID: "b1"}}, http.StatusOK},
		{"in progress", stubRebuilder{err: models.ErrRebuildInProgress}, http.StatusConflict},
		{"missing data", stubRebuilder{err: models.ErrNotFound}, http.StatusNotFound},
		{"model failure", stubRebuilder{err: models.ErrModelLoad}, http.StatusInternalServerError},
		{"no indexer", nil, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, false, tt.rb)
			w := do(t, s, http.MethodPost, "/api/v1/index/rebuild", "")
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(models.ErrInvalidQuery))
	assert.Equal(t, http.StatusBadRequest, statusFor(models.ErrInvalidInput))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(models.ErrNotReady))
	assert.Equal(t, http.StatusInternalServerError, statusFor(models.ErrDimensionMismatch))
}
