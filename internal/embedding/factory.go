package embedding

import (
	"fmt"

	"github.com/hyperjump/ledgerlens/internal/config"
	"github.com/hyperjump/ledgerlens/internal/models"
)

// New returns the Embedder selected by cfg.Backend. A configured ONNX model that cannot be
// loaded is reported as ErrModelLoad; there is no silent fallback to the hash backend.
func New(cfg config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Backend {
	case config.BackendHash:
		return NewHashEmbedder(cfg.Dimensions), nil
	case config.BackendONNX, "":
		e, err := NewONNXEmbedder(ONNXOptions{
			ModelPath:   cfg.ModelPath,
			VocabPath:   cfg.VocabPath,
			LibraryPath: cfg.LibraryPath,
			Dimensions:  cfg.Dimensions,
			MaxTokens:   cfg.MaxTokens,
			CacheSize:   cfg.CacheSize,
			OutputName:  cfg.OutputName,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrModelLoad, err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("%w: unknown embedding backend %q", models.ErrModelLoad, cfg.Backend)
	}
}

// NewProviderFromConfig builds the Embedder for cfg and wraps it in a Provider.
func NewProviderFromConfig(cfg config.EmbeddingConfig, opts ...ProviderOption) (*Provider, error) {
	e, err := New(cfg)
	if err != nil {
		return nil, err
	}
	base := []ProviderOption{WithBatchSize(cfg.BatchSize), WithWorkers(cfg.Workers)}
	p, err := NewProvider(e, cfg.Dimensions, append(base, opts...)...)
	if err != nil {
		_ = e.Close()
		return nil, err
	}
	return p, nil
}
