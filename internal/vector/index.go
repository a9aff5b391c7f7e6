// Package vector provides exact inner-product vector indexes over positionally addressed vectors.
package vector

import "context"

// VectorIndex stores N vectors addressed by insertion position 0..N-1.
// Build replaces the whole contents; there is no incremental update.
type VectorIndex interface {
	Build(ctx context.Context, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]VectorResult, error)
	Save(path string) error
	Load(path string) error
	Size() int
	Dimensions() int
	Close() error
	Type() string
}

// VectorResult is a single hit. Position indexes the slice passed to Build.
type VectorResult struct {
	Position int
	Score    float64 // inner product; cosine similarity for normalized vectors
}
