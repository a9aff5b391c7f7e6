package config

const (
	BackendONNX = "onnx"
	BackendHash = "hash"
)

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DataPath == "" {
		cfg.Storage.DataPath = "/usr/local/var/ledgerlens/data/transactions.json"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/ledgerlens/data/db/transactions.db"
	}
	if cfg.Storage.IndexPath == "" {
		cfg.Storage.IndexPath = "/usr/local/var/ledgerlens/data/indices/transactions.index"
	}
	if cfg.Storage.MetadataPath == "" {
		cfg.Storage.MetadataPath = "/usr/local/var/ledgerlens/data/indices/transactions_meta.json"
	}
	if cfg.Embedding.Backend == "" {
		cfg.Embedding.Backend = BackendONNX
	}
	if cfg.Embedding.Backend == BackendONNX && cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/ledgerlens/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Backend == BackendONNX && cfg.Embedding.VocabPath == "" {
		cfg.Embedding.VocabPath = "/usr/local/var/ledgerlens/data/models/vocab.txt"
	}
	if cfg.Embedding.OutputName == "" {
		cfg.Embedding.OutputName = "last_hidden_state"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 128
	}
	if cfg.Embedding.Workers == 0 {
		cfg.Embedding.Workers = 2
	}
	if cfg.Vector.IndexType == "" {
		cfg.Vector.IndexType = "memory"
	}
	if cfg.Search.DefaultTopK == 0 {
		cfg.Search.DefaultTopK = 5
	}
	if cfg.Search.MaxTopK == 0 {
		cfg.Search.MaxTopK = 200
	}
	if cfg.Search.MaxQueryLength == 0 {
		cfg.Search.MaxQueryLength = 200
	}
	if cfg.Search.OverfetchFactor == 0 {
		cfg.Search.OverfetchFactor = 3
	}
	if cfg.Summary.TopCategories == 0 {
		cfg.Summary.TopCategories = 5
	}
	if cfg.Summary.LargeTransactionThreshold == 0 {
		cfg.Summary.LargeTransactionThreshold = 5000
	}
	if cfg.Summary.HighVolumeThreshold == 0 {
		cfg.Summary.HighVolumeThreshold = 50
	}
	if cfg.Summary.FrequentPayeeMin == 0 {
		cfg.Summary.FrequentPayeeMin = 3
	}
	if cfg.Canonical.CurrencySymbol == "" {
		cfg.Canonical.CurrencySymbol = "₹"
	}
	if cfg.Generator.NumUsers == 0 {
		cfg.Generator.NumUsers = 5
	}
	if cfg.Generator.MinTransactions == 0 {
		cfg.Generator.MinTransactions = 100
	}
	if cfg.Generator.MaxTransactions == 0 {
		cfg.Generator.MaxTransactions = 300
	}
	if cfg.Generator.DaysBack == 0 {
		cfg.Generator.DaysBack = 180
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = 500
	}
}
