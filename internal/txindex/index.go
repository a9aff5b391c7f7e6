// Package txindex pairs a vector index with the records its vectors were built from.
// Position i in the vector index always refers to record i.
package txindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/ledgerlens/internal/models"
	"github.com/hyperjump/ledgerlens/internal/vector"
	"go.uber.org/zap"
)

// Hit is a record returned by Search with its similarity to the query.
type Hit struct {
	Position int
	Record   *models.Transaction
	Score    float64
}

// Index is a vector index plus its parallel record list. It is not ready until Build or Load succeeds.
type Index struct {
	vectors vector.VectorIndex
	records []models.Transaction
	ready   bool
	buildID string
	builtAt time.Time
	logger  *zap.Logger
	mu      sync.RWMutex
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(x *Index) {
		if l != nil {
			x.logger = l
		}
	}
}

// New wraps an empty vector index.
func New(vectors vector.VectorIndex, opts ...Option) *Index {
	x := &Index{vectors: vectors, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// sidecar is the JSON file persisted next to the vector artifact.
type sidecar struct {
	Transactions []models.Transaction `json:"transactions"`
	Count        int                  `json:"count"`
	BuildID      string               `json:"build_id"`
	Dimensions   int                  `json:"dimensions"`
	BuiltAt      time.Time            `json:"built_at"`
}

// Build replaces the contents with vectors and their records. The two slices must be the same length.
// On failure the previous contents and ready state are kept.
func (x *Index) Build(ctx context.Context, vectors [][]float32, records []models.Transaction) error {
	if len(vectors) != len(records) {
		return fmt.Errorf("%w: %d vectors for %d records", models.ErrCountMismatch, len(vectors), len(records))
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.vectors.Build(ctx, vectors); err != nil {
		return fmt.Errorf("build vector index: %w", err)
	}
	x.records = append([]models.Transaction(nil), records...)
	x.ready = true
	x.buildID = uuid.NewString()
	x.builtAt = time.Now().UTC()
	x.logger.Info("Index built",
		zap.String("build_id", x.buildID),
		zap.Int("count", len(records)),
		zap.Int("dimensions", x.vectors.Dimensions()))
	return nil
}

// Search returns up to k records most similar to query, by descending score, ties by lower position.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if !x.ready {
		return nil, models.ErrNotReady
	}
	if len(query) != x.vectors.Dimensions() {
		return nil, fmt.Errorf("%w: query has %d components, index has %d", models.ErrDimensionMismatch, len(query), x.vectors.Dimensions())
	}
	if k <= 0 || len(x.records) == 0 {
		return []Hit{}, nil
	}
	raw, err := x.vectors.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, 0, len(raw))
	for _, r := range raw {
		if r.Position < 0 || r.Position >= len(x.records) {
			continue
		}
		hits = append(hits, Hit{Position: r.Position, Record: &x.records[r.Position], Score: r.Score})
	}
	return hits, nil
}

// Record returns the record at position.
func (x *Index) Record(position int) (models.Transaction, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if position < 0 || position >= len(x.records) {
		return models.Transaction{}, false
	}
	return x.records[position], true
}

// Records returns a copy of the record list in position order.
func (x *Index) Records() []models.Transaction {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]models.Transaction(nil), x.records...)
}

// Size returns the number of indexed records.
func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records)
}

// Ready reports whether Build or Load has succeeded.
func (x *Index) Ready() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.ready
}

// Dimensions returns the vector dimension.
func (x *Index) Dimensions() int {
	return x.vectors.Dimensions()
}

// Info describes the index.
func (x *Index) Info() models.IndexInfo {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return models.IndexInfo{
		Ready:            x.ready,
		TransactionCount: len(x.records),
		IndexSize:        x.vectors.Size(),
		Dimension:        x.vectors.Dimensions(),
		IndexType:        x.vectors.Type(),
		BuildID:          x.buildID,
		BuiltAt:          x.builtAt,
	}
}

// Persist writes the vector artifact to indexPath and the record sidecar to metadataPath.
func (x *Index) Persist(indexPath, metadataPath string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if !x.ready {
		return models.ErrNotReady
	}
	for _, p := range []string{indexPath, metadataPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", p, err)
		}
	}
	if err := x.vectors.Save(indexPath); err != nil {
		return fmt.Errorf("save vector index: %w", err)
	}
	meta := sidecar{
		Transactions: x.records,
		Count:        len(x.records),
		BuildID:      x.buildID,
		Dimensions:   x.vectors.Dimensions(),
		BuiltAt:      x.builtAt,
	}
	if meta.Transactions == nil {
		meta.Transactions = []models.Transaction{}
	}
	if err := writeJSON(metadataPath, meta); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	x.logger.Info("Index persisted", zap.String("index_path", indexPath), zap.String("metadata_path", metadataPath))
	return nil
}

// Load reads both artifacts. A missing vector artifact yields ErrNotFound. An unreadable or
// inconsistent pair is deleted from disk and reported as ErrCorruptArtifact; a dimension
// mismatch is reported as ErrDimensionMismatch and the files are deleted as well. On any
// failure the index keeps its previous contents.
func (x *Index) Load(indexPath, metadataPath string) error {
	if _, err := os.Stat(indexPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", models.ErrNotFound, indexPath)
		}
		return err
	}

	meta, err := readSidecar(metadataPath)
	if err != nil {
		x.discard(indexPath, metadataPath, err)
		return fmt.Errorf("%w: metadata %s: %v", models.ErrCorruptArtifact, metadataPath, err)
	}
	if meta.Count != len(meta.Transactions) {
		err := fmt.Errorf("%w: metadata count %d but %d transactions", models.ErrCorruptArtifact, meta.Count, len(meta.Transactions))
		x.discard(indexPath, metadataPath, err)
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.vectors.Load(indexPath); err != nil {
		x.discard(indexPath, metadataPath, err)
		if errors.Is(err, models.ErrDimensionMismatch) || errors.Is(err, models.ErrCorruptArtifact) {
			return err
		}
		return fmt.Errorf("%w: %v", models.ErrCorruptArtifact, err)
	}
	if x.vectors.Size() != len(meta.Transactions) {
		err := fmt.Errorf("%w: index holds %d vectors but metadata has %d transactions",
			models.ErrCorruptArtifact, x.vectors.Size(), len(meta.Transactions))
		x.discard(indexPath, metadataPath, err)
		x.ready = false
		x.records = nil
		return err
	}

	x.records = meta.Transactions
	x.buildID = meta.BuildID
	x.builtAt = meta.BuiltAt
	x.ready = true
	x.logger.Info("Index loaded",
		zap.String("build_id", x.buildID),
		zap.Int("count", len(x.records)),
		zap.String("index_path", indexPath))
	return nil
}

// Close releases the vector index.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.ready = false
	return x.vectors.Close()
}

func (x *Index) discard(indexPath, metadataPath string, cause error) {
	x.logger.Warn("Discarding persisted index", zap.Error(cause),
		zap.String("index_path", indexPath), zap.String("metadata_path", metadataPath))
	if err := Remove(indexPath, metadataPath); err != nil {
		x.logger.Warn("Failed to remove index artifacts", zap.Error(err))
	}
}

// Remove deletes both artifacts. Missing files are not an error.
func Remove(indexPath, metadataPath string) error {
	var errs []error
	for _, p := range []string{indexPath, metadataPath} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func readSidecar(path string) (*sidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta sidecar
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
