package embedding

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/hyperjump/ledgerlens/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultBatchSize = 128

// Provider wraps an Embedder with batching, shape checks and normalization. Every vector it
// returns has exactly Dimensions() components and unit L2 norm.
type Provider struct {
	embedder   Embedder
	dimensions int
	batchSize  int
	workers    int
	progress   func(done, total int)
	logger     *zap.Logger
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithBatchSize sets how many texts go to the embedder per call.
func WithBatchSize(n int) ProviderOption {
	return func(p *Provider) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithWorkers sets how many batches are encoded concurrently.
func WithWorkers(n int) ProviderOption {
	return func(p *Provider) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithProgress registers a callback invoked after each batch with texts done so far.
func WithProgress(fn func(done, total int)) ProviderOption {
	return func(p *Provider) {
		p.progress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ProviderOption {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProvider returns a Provider producing vectors of the given dimension.
func NewProvider(embedder Embedder, dimensions int, opts ...ProviderOption) (*Provider, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}
	p := &Provider{
		embedder:   embedder,
		dimensions: dimensions,
		batchSize:  defaultBatchSize,
		workers:    1,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Dimensions returns the vector dimension D.
func (p *Provider) Dimensions() int {
	return p.dimensions
}

// Close releases the underlying embedder.
func (p *Provider) Close() error {
	return p.embedder.Close()
}

// EmbedBatch encodes texts in batches and returns one normalized vector per text, in input order.
// An empty input yields an empty, non-nil result.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	var (
		done    = make(chan int, p.workers)
		g, gctx = errgroup.WithContext(ctx)
	)
	g.SetLimit(p.workers)

	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		total := 0
		for n := range done {
			total += n
			if p.progress != nil {
				p.progress(total, len(texts))
			}
		}
	}()

	for start := 0; start < len(texts); start += p.batchSize {
		end := start + p.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		start, batch := start, texts[start:end]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vecs, err := p.embedder.EmbedBatch(gctx, batch)
			if err != nil {
				return fmt.Errorf("embed batch at %d: %w", start, err)
			}
			if len(vecs) != len(batch) {
				return fmt.Errorf("%w: embedder returned %d vectors for %d texts", models.ErrCountMismatch, len(vecs), len(batch))
			}
			for i, v := range vecs {
				nv, err := p.finish(v)
				if err != nil {
					return err
				}
				out[start+i] = nv
			}
			done <- len(batch)
			return nil
		})
	}

	err := g.Wait()
	close(done)
	<-progressDone
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Embedded batch", zap.Int("texts", len(texts)), zap.Int("batch_size", p.batchSize))
	return out, nil
}

// EmbedQuery encodes a single query string.
func (p *Provider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: query is not valid UTF-8", models.ErrInvalidInput)
	}
	v, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return p.finish(v)
}

// finish checks the shape and returns a normalized copy of v.
func (p *Provider) finish(v []float32) ([]float32, error) {
	if len(v) != p.dimensions {
		return nil, fmt.Errorf("%w: embedder returned %d components, want %d", models.ErrDimensionMismatch, len(v), p.dimensions)
	}
	out := make([]float32, len(v))
	copy(out, v)
	NormalizeL2Slice(out)
	return out, nil
}
