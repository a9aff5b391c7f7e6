package main

import (
	"errors"
	"fmt"

	"github.com/hyperjump/ledgerlens/internal/config"
	"github.com/hyperjump/ledgerlens/internal/embedding"
	"github.com/hyperjump/ledgerlens/internal/generator"
	"github.com/hyperjump/ledgerlens/internal/indexer"
	"github.com/hyperjump/ledgerlens/internal/keyword"
	"github.com/hyperjump/ledgerlens/internal/models"
	"github.com/hyperjump/ledgerlens/internal/search"
	"github.com/hyperjump/ledgerlens/internal/storage"
	"github.com/hyperjump/ledgerlens/internal/summary"
	"github.com/hyperjump/ledgerlens/internal/vector"
	"go.uber.org/zap"
)

// Components holds initialized services.
type Components struct {
	Provider *embedding.Provider
	Storage  *storage.SQLiteStorage
	Keyword  *keyword.BleveIndex
	Engine   *search.Engine
	Indexer  *indexer.Indexer
}

// Close releases the serving index and every backing resource.
func (c *Components) Close() {
	if c.Engine != nil {
		if idx := c.Engine.Swap(nil); idx != nil {
			_ = idx.Close()
		}
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Keyword != nil {
		_ = c.Keyword.Close()
	}
	if c.Provider != nil {
		_ = c.Provider.Close()
	}
}

type componentOptions struct {
	progress func(done, total int)
}

type componentOption func(*componentOptions)

func withProgress(fn func(done, total int)) componentOption {
	return func(o *componentOptions) { o.progress = fn }
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, opts ...componentOption) (*Components, error) {
	var o componentOptions
	for _, opt := range opts {
		opt(&o)
	}

	providerOpts := []embedding.ProviderOption{embedding.WithLogger(logger)}
	if o.progress != nil {
		providerOpts = append(providerOpts, embedding.WithProgress(o.progress))
	}
	provider, err := embedding.NewProviderFromConfig(cfg.Embedding, providerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	c := &Components{Provider: provider}

	c.Engine = search.NewEngine(provider,
		search.WithLimits(models.QueryLimits{
			MaxTopK:        cfg.Search.MaxTopK,
			MaxQueryLength: cfg.Search.MaxQueryLength,
		}),
		search.WithOverfetchFactor(cfg.Search.OverfetchFactor),
		search.WithSummaryOptions(summaryOptions(cfg.Summary)),
		search.WithLogger(logger),
	)

	c.Storage, err = storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.Keyword, err = keyword.NewBleveIndex()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	gen := generator.New(cfg.Generator)
	c.Indexer = indexer.NewIndexer(
		provider,
		vectorFactory(cfg, logger),
		storage.JSONSource{Path: cfg.Storage.DataPath},
		c.Engine,
		indexer.WithLogger(logger),
		indexer.WithMirrors(c.Storage, c.Keyword),
		indexer.WithGenerator(gen.Generate),
		indexer.WithCurrencySymbol(cfg.Canonical.CurrencySymbol),
		indexer.WithArtifacts(cfg.Storage.IndexPath, cfg.Storage.MetadataPath),
	)
	logger.Info("components initialized",
		zap.String("embedding_backend", cfg.Embedding.Backend),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.String("vector_index_type", cfg.Vector.IndexType),
		zap.Bool("faiss_available", vector.IsFAISSAvailable()))
	return c, nil
}

// vectorFactory creates the configured vector index, falling back to memory when FAISS
// is requested but not compiled in.
func vectorFactory(cfg *config.Config, logger *zap.Logger) indexer.VectorFactory {
	dims := cfg.Embedding.Dimensions
	indexType := cfg.Vector.IndexType
	return func() (vector.VectorIndex, error) {
		vi, err := vector.NewVectorIndex(indexType, dims)
		if err == nil || indexType == string(vector.IndexTypeMemory) {
			return vi, err
		}
		logger.Warn("failed to create vector index, falling back to memory",
			zap.String("requested_type", indexType), zap.Error(err))
		return vector.NewVectorIndex(string(vector.IndexTypeMemory), dims)
	}
}

func summaryOptions(cfg config.SummaryConfig) summary.Options {
	return summary.Options{
		TopCategories:             cfg.TopCategories,
		LargeTransactionThreshold: cfg.LargeTransactionThreshold,
		HighVolumeThreshold:       cfg.HighVolumeThreshold,
		FrequentPayeeMin:          cfg.FrequentPayeeMin,
		DebitsOnly:                cfg.DebitsOnly,
	}
}

// missingData turns a missing record set into an actionable message.
func missingData(err error, cfg *config.Config) error {
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%w (run 'ledgerlens generate' to create %s)", err, cfg.Storage.DataPath)
	}
	return err
}
