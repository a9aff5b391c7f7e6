package vector

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperjump/ledgerlens/internal/models"
)

// MemoryIndex is an in-memory vector index using brute-force inner product search.
// Vectors are kept in one contiguous slice, row i holding position i.
type MemoryIndex struct {
	dimensions int
	data       []float32
	count      int
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory vector index with the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{dimensions: dimensions}, nil
}

// Type returns the index type identifier.
func (m *MemoryIndex) Type() string {
	return string(IndexTypeMemory)
}

// Build replaces the index contents with vectors. Every vector must have the index dimension;
// on error the previous contents are kept.
func (m *MemoryIndex) Build(ctx context.Context, vectors [][]float32) error {
	flat, err := flatten(vectors, m.dimensions)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = flat
	m.count = len(vectors)
	return nil
}

// Search returns the top min(k, N) positions by inner product, ties broken by lower position.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]VectorResult, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d", models.ErrDimensionMismatch, len(query), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || m.count == 0 {
		return []VectorResult{}, nil
	}
	scores := make([]VectorResult, m.count)
	for i := 0; i < m.count; i++ {
		row := m.data[i*m.dimensions : (i+1)*m.dimensions]
		var dot float64
		for j, q := range query {
			dot += float64(q) * float64(row[j])
		}
		scores[i] = VectorResult{Position: i, Score: dot}
	}
	sortResults(scores)
	if k > len(scores) {
		k = len(scores)
	}
	return scores[:k:k], nil
}

// Save writes the index to path. Directory is created if needed.
func (m *MemoryIndex) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if path == "" {
		return fmt.Errorf("index path is empty")
	}
	return writeArtifact(path, m.dimensions, m.data)
}

// Load replaces the in-memory contents with the artifact at path. Dimensions must match.
// On error the previous contents are kept.
func (m *MemoryIndex) Load(path string) error {
	if path == "" {
		return fmt.Errorf("index path is empty")
	}
	flat, err := readArtifact(path, m.dimensions)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = flat
	m.count = len(flat) / m.dimensions
	return nil
}

// Vector returns a copy of the vector at position, or nil when out of range.
func (m *MemoryIndex) Vector(position int) []float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if position < 0 || position >= m.count {
		return nil
	}
	out := make([]float32, m.dimensions)
	copy(out, m.data[position*m.dimensions:(position+1)*m.dimensions])
	return out
}

// Size returns the number of vectors in the index.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count
}

// Dimensions returns the vector dimension.
func (m *MemoryIndex) Dimensions() int {
	return m.dimensions
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}

// flatten copies vectors into one contiguous slice, checking each length.
func flatten(vectors [][]float32, dimensions int) ([]float32, error) {
	flat := make([]float32, len(vectors)*dimensions)
	for i, vec := range vectors {
		if len(vec) != dimensions {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				models.ErrDimensionMismatch, i, len(vec), dimensions)
		}
		copy(flat[i*dimensions:(i+1)*dimensions], vec)
	}
	return flat, nil
}
