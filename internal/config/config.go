// Package config provides configuration loading and structs for the ledgerlens server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Vector    VectorConfig    `yaml:"vector"`
	Search    SearchConfig    `yaml:"search"`
	Summary   SummaryConfig   `yaml:"summary"`
	Canonical CanonicalConfig `yaml:"canonical"`
	Generator GeneratorConfig `yaml:"generator"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the record set, its SQLite mirror and the persisted index.
type StorageConfig struct {
	DataPath     string `yaml:"data_path"`
	DatabasePath string `yaml:"database_path"`
	IndexPath    string `yaml:"index_path"`
	MetadataPath string `yaml:"metadata_path"`
}

// EmbeddingConfig holds embedding backend settings.
type EmbeddingConfig struct {
	Backend     string `yaml:"backend"` // onnx or hash
	ModelPath   string `yaml:"model_path"`
	VocabPath   string `yaml:"vocab_path"` // vocab.txt matching model_path
	LibraryPath string `yaml:"library_path"`
	OutputName  string `yaml:"output_name"`
	Dimensions  int    `yaml:"dimensions"`
	MaxTokens   int    `yaml:"max_tokens"`
	CacheSize   int    `yaml:"cache_size"`
	BatchSize   int    `yaml:"batch_size"`
	Workers     int    `yaml:"workers"`
}

// VectorConfig selects the nearest-neighbour backend.
type VectorConfig struct {
	IndexType string `yaml:"index_type"` // memory or faiss
}

// SearchConfig holds retrieval limits.
type SearchConfig struct {
	DefaultTopK     int `yaml:"default_top_k"`
	MaxTopK         int `yaml:"max_top_k"`
	MaxQueryLength  int `yaml:"max_query_length"`
	OverfetchFactor int `yaml:"overfetch_factor"`
}

// SummaryConfig holds aggregation and insight thresholds.
type SummaryConfig struct {
	TopCategories             int     `yaml:"top_categories"`
	LargeTransactionThreshold float64 `yaml:"large_transaction_threshold"`
	HighVolumeThreshold       int     `yaml:"high_volume_threshold"`
	FrequentPayeeMin          int     `yaml:"frequent_payee_min"`
	DebitsOnly                bool    `yaml:"debits_only"`
}

// CanonicalConfig controls how records are rendered to text before embedding.
type CanonicalConfig struct {
	CurrencySymbol string `yaml:"currency_symbol"`
}

// GeneratorConfig controls the synthetic data generator. Seed 0 means time-seeded.
type GeneratorConfig struct {
	NumUsers        int   `yaml:"num_users"`
	MinTransactions int   `yaml:"min_transactions"`
	MaxTransactions int   `yaml:"max_transactions"`
	DaysBack        int   `yaml:"days_back"`
	Seed            int64 `yaml:"seed"`
}

// WatchConfig holds data file watch settings.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMs int  `yaml:"debounce_ms"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DataPath = expandPath(cfg.Storage.DataPath, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.IndexPath = expandPath(cfg.Storage.IndexPath, configDir)
	cfg.Storage.MetadataPath = expandPath(cfg.Storage.MetadataPath, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}
	if cfg.Embedding.VocabPath != "" {
		cfg.Embedding.VocabPath = expandPath(cfg.Embedding.VocabPath, configDir)
	}
	if cfg.Embedding.LibraryPath != "" {
		cfg.Embedding.LibraryPath = expandPath(cfg.Embedding.LibraryPath, configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate rejects values ApplyDefaults cannot repair.
func (c *Config) Validate() error {
	switch c.Embedding.Backend {
	case BackendONNX, BackendHash:
	default:
		return fmt.Errorf("invalid embedding.backend %q (want %s or %s)", c.Embedding.Backend, BackendONNX, BackendHash)
	}
	switch c.Vector.IndexType {
	case "memory", "faiss":
	default:
		return fmt.Errorf("invalid vector.index_type %q (want memory or faiss)", c.Vector.IndexType)
	}
	if c.Search.DefaultTopK > c.Search.MaxTopK {
		return fmt.Errorf("search.default_top_k (%d) exceeds search.max_top_k (%d)", c.Search.DefaultTopK, c.Search.MaxTopK)
	}
	if c.Generator.MinTransactions > c.Generator.MaxTransactions {
		return fmt.Errorf("generator.min_transactions (%d) exceeds generator.max_transactions (%d)",
			c.Generator.MinTransactions, c.Generator.MaxTransactions)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
