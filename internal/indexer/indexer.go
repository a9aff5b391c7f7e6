// Package indexer renders transactions to text, embeds them and builds the searchable index.
// It owns the startup sequence (load or rebuild) and exclusive rebuilds.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/hyperjump/ledgerlens/internal/models"
	"github.com/hyperjump/ledgerlens/internal/txindex"
	"github.com/hyperjump/ledgerlens/internal/vector"
	"go.uber.org/zap"
)

// Embedder encodes canonical texts. *embedding.Provider satisfies it.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// Source supplies the record set.
type Source interface {
	Load(ctx context.Context) ([]models.Transaction, error)
	Save(ctx context.Context, txns []models.Transaction) error
}

// Mirror receives the full record set whenever it is (re)loaded, e.g. the SQLite store
// and the keyword index.
type Mirror interface {
	ReplaceAll(ctx context.Context, records []models.Transaction) error
}

// Target serves the index. *search.Engine satisfies it.
type Target interface {
	Swap(idx *txindex.Index) *txindex.Index
}

// VectorFactory returns a new, empty vector index of the configured type and dimension.
type VectorFactory func() (vector.VectorIndex, error)

// Indexer builds indexes and installs them into a Target.
type Indexer struct {
	embedder     Embedder
	newVectors   VectorFactory
	source       Source
	target       Target
	mirrors      []Mirror
	generate     func() []models.Transaction
	currency     string
	indexPath    string
	metadataPath string
	logger       *zap.Logger
	mu           sync.Mutex // held for the whole of Bootstrap or Rebuild
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for build and load events.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) {
		if l != nil {
			idx.logger = l
		}
	}
}

// WithMirrors registers stores that receive the record set on every load.
func WithMirrors(m ...Mirror) IndexerOption {
	return func(idx *Indexer) { idx.mirrors = append(idx.mirrors, m...) }
}

// WithGenerator sets a fallback used by Bootstrap when the source has no data yet.
// The generated records are saved to the source.
func WithGenerator(fn func() []models.Transaction) IndexerOption {
	return func(idx *Indexer) { idx.generate = fn }
}

// WithCurrencySymbol sets the symbol used by Render.
func WithCurrencySymbol(s string) IndexerOption {
	return func(idx *Indexer) {
		if s != "" {
			idx.currency = s
		}
	}
}

// WithArtifacts sets where the index is persisted. Without it nothing is persisted or loaded.
func WithArtifacts(indexPath, metadataPath string) IndexerOption {
	return func(idx *Indexer) {
		idx.indexPath = indexPath
		idx.metadataPath = metadataPath
	}
}

// NewIndexer creates an indexer with the given dependencies.
func NewIndexer(embedder Embedder, newVectors VectorFactory, source Source, target Target, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		embedder:   embedder,
		newVectors: newVectors,
		source:     source,
		target:     target,
		currency:   DefaultCurrencySymbol,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Build renders and embeds records and returns a new ready index. Nothing is persisted or swapped.
func (idx *Indexer) Build(ctx context.Context, records []models.Transaction) (*txindex.Index, error) {
	start := time.Now()
	texts := RenderAll(records, idx.currency)
	vectors, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	vi, err := idx.newVectors()
	if err != nil {
		return nil, fmt.Errorf("failed to create vector index: %w", err)
	}
	if vi.Dimensions() != idx.embedder.Dimensions() {
		_ = vi.Close()
		return nil, fmt.Errorf("%w: vector index has %d dimensions, embedder %d",
			models.ErrDimensionMismatch, vi.Dimensions(), idx.embedder.Dimensions())
	}
	x := txindex.New(vi, txindex.WithLogger(idx.logger))
	if err := x.Build(ctx, vectors, records); err != nil {
		_ = vi.Close()
		return nil, err
	}
	idx.logger.Info("Index build finished",
		zap.Int("count", len(records)),
		zap.Duration("elapsed", time.Since(start)))
	return x, nil
}

// Rebuild reloads the record set, builds a fresh index, persists it and swaps it in.
// The serving index stays in place until the new one is ready. A second call while one
// is running fails with ErrRebuildInProgress.
func (idx *Indexer) Rebuild(ctx context.Context) (models.IndexInfo, error) {
	if !idx.mu.TryLock() {
		return models.IndexInfo{}, models.ErrRebuildInProgress
	}
	defer idx.mu.Unlock()

	records, err := idx.source.Load(ctx)
	if err != nil {
		return models.IndexInfo{}, fmt.Errorf("failed to load transactions: %w", err)
	}

	x, err := idx.Build(ctx, records)
	if err != nil {
		return models.IndexInfo{}, err
	}
	if err := idx.persist(x); err != nil {
		_ = x.Close()
		return models.IndexInfo{}, err
	}
	idx.install(ctx, x, records)
	return x.Info(), nil
}

// Bootstrap prepares the first serving index: it loads (or generates) the record set, then
// loads the persisted index when both artifacts are present and hold exactly that record set;
// otherwise it discards them, rebuilds and persists.
func (idx *Indexer) Bootstrap(ctx context.Context) (models.IndexInfo, error) {
	if !idx.mu.TryLock() {
		return models.IndexInfo{}, models.ErrRebuildInProgress
	}
	defer idx.mu.Unlock()

	records, err := idx.loadOrGenerate(ctx)
	if err != nil {
		return models.IndexInfo{}, err
	}

	if x := idx.loadPersisted(records); x != nil {
		idx.install(ctx, x, records)
		return x.Info(), nil
	}

	x, err := idx.Build(ctx, records)
	if err != nil {
		return models.IndexInfo{}, err
	}
	if err := idx.persist(x); err != nil {
		_ = x.Close()
		return models.IndexInfo{}, err
	}
	idx.install(ctx, x, records)
	return x.Info(), nil
}

// install swaps x in and refreshes the mirrors with the records it was built from, so
// lookups never run ahead of the serving index.
func (idx *Indexer) install(ctx context.Context, x *txindex.Index, records []models.Transaction) {
	idx.swap(x)
	idx.mirror(ctx, records)
}

// swap installs x and releases the index it replaces. Searches still holding the old index
// finish first; the engine retries any that arrive after it is closed.
func (idx *Indexer) swap(x *txindex.Index) {
	if prev := idx.target.Swap(x); prev != nil && prev != x {
		if err := prev.Close(); err != nil {
			idx.logger.Warn("Failed to close previous index", zap.Error(err))
		}
	}
}

func (idx *Indexer) loadOrGenerate(ctx context.Context) ([]models.Transaction, error) {
	records, err := idx.source.Load(ctx)
	if err == nil {
		idx.logger.Info("Loaded transactions", zap.Int("count", len(records)))
		return records, nil
	}
	if !errors.Is(err, models.ErrNotFound) || idx.generate == nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	records = idx.generate()
	if err := idx.source.Save(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to save generated transactions: %w", err)
	}
	idx.logger.Info("Generated transactions", zap.Int("count", len(records)))
	return records, nil
}

// loadPersisted returns the persisted index if it loads cleanly and matches records, else nil.
func (idx *Indexer) loadPersisted(records []models.Transaction) *txindex.Index {
	if idx.indexPath == "" || idx.metadataPath == "" {
		return nil
	}
	vi, err := idx.newVectors()
	if err != nil {
		idx.logger.Warn("Failed to create vector index", zap.Error(err))
		return nil
	}
	x := txindex.New(vi, txindex.WithLogger(idx.logger))
	if err := x.Load(idx.indexPath, idx.metadataPath); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			idx.logger.Info("No persisted index, building", zap.String("index_path", idx.indexPath))
		} else {
			idx.logger.Warn("Persisted index unusable, rebuilding", zap.Error(err))
		}
		_ = vi.Close()
		return nil
	}
	if !sameRecords(x.Records(), records) {
		idx.logger.Warn("Persisted index is stale, rebuilding",
			zap.Int("indexed", x.Size()), zap.Int("source", len(records)))
		_ = x.Close()
		if err := txindex.Remove(idx.indexPath, idx.metadataPath); err != nil {
			idx.logger.Warn("Failed to remove stale index", zap.Error(err))
		}
		return nil
	}
	return x
}

func (idx *Indexer) persist(x *txindex.Index) error {
	if idx.indexPath == "" || idx.metadataPath == "" {
		return nil
	}
	if err := x.Persist(idx.indexPath, idx.metadataPath); err != nil {
		return fmt.Errorf("failed to persist index: %w", err)
	}
	return nil
}

// mirror pushes records to every mirror. Mirrors serve lookups only, so failures are logged.
func (idx *Indexer) mirror(ctx context.Context, records []models.Transaction) {
	for _, m := range idx.mirrors {
		if err := m.ReplaceAll(ctx, records); err != nil {
			idx.logger.Warn("Failed to mirror transactions", zap.Error(err))
		}
	}
}

func sameRecords(a, b []models.Transaction) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
