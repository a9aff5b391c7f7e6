// Package search provides the retrieval engine: semantic search over the current index with
// attribute filters and result summaries.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hyperjump/ledgerlens/internal/models"
	"github.com/hyperjump/ledgerlens/internal/summary"
	"github.com/hyperjump/ledgerlens/internal/txindex"
	"go.uber.org/zap"
)

// DefaultOverfetchFactor multiplies k when pulling candidates, leaving headroom for filter rejection.
const DefaultOverfetchFactor = 3

// State is the engine lifecycle stage.
type State int

const (
	// Uninitialized engines reject queries with ErrNotReady.
	Uninitialized State = iota
	// Ready engines serve queries against a built or loaded index.
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "uninitialized"
}

// QueryEmbedder turns query text into a normalized vector.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Engine answers semantic queries against the index most recently passed to Swap.
// Swapping is atomic: a query sees either the old index or the new one, never a partial build.
type Engine struct {
	embedder    QueryEmbedder
	index       atomic.Pointer[txindex.Index]
	limits      models.QueryLimits
	overfetch   int
	summaryOpts summary.Options
	logger      *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimits sets query validation limits.
func WithLimits(l models.QueryLimits) Option {
	return func(e *Engine) { e.limits = l }
}

// WithOverfetchFactor sets the candidate multiplier.
func WithOverfetchFactor(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.overfetch = n
		}
	}
}

// WithSummaryOptions sets thresholds used by Query.
func WithSummaryOptions(o summary.Options) Option {
	return func(e *Engine) { e.summaryOpts = o }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine returns an Uninitialized engine.
func NewEngine(embedder QueryEmbedder, opts ...Option) *Engine {
	e := &Engine{
		embedder:    embedder,
		overfetch:   DefaultOverfetchFactor,
		summaryOpts: summary.DefaultOptions(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Swap installs idx as the serving index and returns the previous one (possibly nil).
// idx must be ready.
func (e *Engine) Swap(idx *txindex.Index) *txindex.Index {
	prev := e.index.Swap(idx)
	if idx != nil {
		info := idx.Info()
		e.logger.Info("Serving index swapped",
			zap.String("build_id", info.BuildID),
			zap.Int("count", info.TransactionCount))
	}
	return prev
}

// Index returns the serving index, or nil.
func (e *Engine) Index() *txindex.Index {
	return e.index.Load()
}

// State reports whether a ready index is being served.
func (e *Engine) State() State {
	if idx := e.index.Load(); idx != nil && idx.Ready() {
		return Ready
	}
	return Uninitialized
}

// Ready is shorthand for State() == Ready.
func (e *Engine) Ready() bool {
	return e.State() == Ready
}

// Info describes the serving index. An engine with no index reports Ready=false.
func (e *Engine) Info() models.IndexInfo {
	idx := e.index.Load()
	if idx == nil {
		return models.IndexInfo{}
	}
	return idx.Info()
}

// Search returns up to q.TopK records passing q.Filters, most similar first.
func (e *Engine) Search(ctx context.Context, q *models.SearchQuery) ([]*models.SearchResult, error) {
	if q == nil {
		return nil, fmt.Errorf("%w: query is required", models.ErrInvalidQuery)
	}
	if err := q.Validate(e.limits); err != nil {
		return nil, err
	}
	idx := e.index.Load()
	if idx == nil || !idx.Ready() {
		return nil, models.ErrNotReady
	}

	vec, err := e.embedder.EmbedQuery(ctx, q.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := e.candidates(ctx, idx, vec, q.TopK)
	if errors.Is(err, models.ErrNotReady) {
		// idx was replaced and closed between Load and Search
		if cur := e.index.Load(); cur != nil && cur != idx {
			hits, err = e.candidates(ctx, cur, vec, q.TopK)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]*models.SearchResult, 0, q.TopK)
	for _, h := range hits {
		if !q.Filters.Match(h.Record) {
			continue
		}
		results = append(results, &models.SearchResult{Transaction: *h.Record, SimilarityScore: h.Score})
		if len(results) == q.TopK {
			break
		}
	}
	e.logger.Debug("Search",
		zap.String("query", q.Query),
		zap.Int("top_k", q.TopK),
		zap.Int("candidates", len(hits)),
		zap.Int("results", len(results)))
	return results, nil
}

// candidates over-fetches min(k*overfetch, N) nearest records from idx.
func (e *Engine) candidates(ctx context.Context, idx *txindex.Index, vec []float32, k int) ([]txindex.Hit, error) {
	fetch := k * e.overfetch
	if n := idx.Size(); fetch > n {
		fetch = n
	}
	return idx.Search(ctx, vec, fetch)
}

// Query runs Search and summarizes the results.
func (e *Engine) Query(ctx context.Context, q *models.SearchQuery) (*models.SearchResponse, error) {
	start := time.Now()
	results, err := e.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	txns := make([]*models.Transaction, len(results))
	for i, r := range results {
		txns[i] = &r.Transaction
	}
	return &models.SearchResponse{
		Query:        q.Query,
		TopK:         q.TopK,
		ResultsFound: len(results),
		Results:      results,
		Summary:      summary.Summarize(txns, q.Query, e.summaryOpts),
		QueryTime:    time.Since(start).Milliseconds(),
	}, nil
}
