package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hyperjump/ledgerlens/internal/config"
	"github.com/hyperjump/ledgerlens/internal/models"
	"go.uber.org/zap"
)

func TestSearchArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"food delivery", "-top-k", "3"},
			expected: []string{"-top-k", "3", "food delivery"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-top-k", "3", "food delivery"},
			expected: []string{"-top-k", "3", "food delivery"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"food delivery"},
			expected: []string{"food delivery"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"rent", "payments", "--type", "Debit"},
			expected: []string{"--type", "Debit", "rent", "payments"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchArgsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("searchArgsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"rent"}, "rent"},
		{"multiple words", []string{"food", "delivery"}, "food delivery"},
		{"single quoted phrase", []string{"food delivery"}, "food delivery"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSearchQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildSearchQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestSearchConfigPathFromArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		defaultPath string
		want        string
	}{
		{"no config flag", []string{"-top-k", "5", "query"}, "/default.yaml", "/default.yaml"},
		{"-config present", []string{"-config", "/custom.yaml", "query"}, "/default.yaml", "/custom.yaml"},
		{"--config present", []string{"--config", "/other.yaml"}, "/default.yaml", "/other.yaml"},
		{"--config= form", []string{"--config=/eq.yaml", "query"}, "/default.yaml", "/eq.yaml"},
		{"config at end", []string{"query", "-config", "/end.yaml"}, "/default.yaml", "/end.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchConfigPathFromArgs(tt.args, tt.defaultPath)
			if got != tt.want {
				t.Errorf("searchConfigPathFromArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchTopKDefaultFromConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
search:
  default_top_k: 12
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	if got := searchTopKDefaultFromConfig(configPath); got != 12 {
		t.Errorf("searchTopKDefaultFromConfig() = %d, want 12", got)
	}
	if got := searchTopKDefaultFromConfig(filepath.Join(dir, "nonexistent.yaml")); got != models.DefaultTopK {
		t.Errorf("searchTopKDefaultFromConfig(nonexistent) = %d, want %d", got, models.DefaultTopK)
	}
}

func TestFilterFlags(t *testing.T) {
	t.Run("none set", func(t *testing.T) {
		var f filterFlags
		got, err := f.build()
		if err != nil || got != nil {
			t.Errorf("build() = %+v, %v; want nil, nil", got, err)
		}
	})
	t.Run("parsed", func(t *testing.T) {
		var f filterFlags
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		f.register(fs)
		if err := fs.Parse([]string{"--min-amount", "100", "--type", "Debit", "--month", "2024-03", "--user", "user_2"}); err != nil {
			t.Fatal(err)
		}
		got, err := f.build()
		if err != nil {
			t.Fatal(err)
		}
		if got.MinAmount == nil || *got.MinAmount != 100 || got.MaxAmount != nil {
			t.Errorf("amounts = %v, %v", got.MinAmount, got.MaxAmount)
		}
		if got.Type == nil || *got.Type != models.Debit || *got.Month != "2024-03" || *got.UserID != "user_2" {
			t.Errorf("unexpected filters: %+v", got)
		}
		if got.Category != nil || got.DescriptionContains != nil {
			t.Errorf("unset filters should stay nil: %+v", got)
		}
	})
	t.Run("invalid", func(t *testing.T) {
		for _, f := range []filterFlags{{minAmount: "ten"}, {direction: "Refund"}} {
			if _, err := f.build(); err == nil {
				t.Errorf("build(%+v) expected error", f)
			}
		}
	})
}

func TestSearchValues(t *testing.T) {
	min := 250.5
	dir := models.Credit
	cat := "Salary"
	q := &models.SearchQuery{Query: "salary credit", TopK: 7, Filters: &models.Filters{MinAmount: &min, Type: &dir, Category: &cat}}
	v := searchValues(q)
	want := map[string]string{"query": "salary credit", "top_k": "7", "min_amount": "250.5", "type": "Credit", "category": "Salary"}
	for k, w := range want {
		if got := v.Get(k); got != w {
			t.Errorf("%s = %q, want %q", k, got, w)
		}
	}
	if v.Has("max_amount") || v.Has("user_id") {
		t.Errorf("unset filters encoded: %v", v)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s, want %s", resolvedCanon, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			DataPath:     filepath.Join(dir, "transactions.json"),
			DatabasePath: filepath.Join(dir, "db", "transactions.db"),
			IndexPath:    filepath.Join(dir, "indices", "transactions.index"),
			MetadataPath: filepath.Join(dir, "indices", "transactions_meta.json"),
		},
		Embedding: config.EmbeddingConfig{Backend: config.BackendHash},
		Generator: config.GeneratorConfig{NumUsers: 2, MinTransactions: 20, MaxTransactions: 30, Seed: 42},
	}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestInitializeComponents_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	components, err := initializeComponents(cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer components.Close()

	ctx := context.Background()
	if _, err := components.Engine.Query(ctx, &models.SearchQuery{Query: "food", TopK: 5}); err == nil {
		t.Fatal("expected ErrNotReady before bootstrap")
	}
	info, err := components.Indexer.Bootstrap(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if info.TransactionCount < 40 || info.TransactionCount > 60 {
		t.Errorf("transaction count = %d, want 40..60", info.TransactionCount)
	}
	n, err := components.Storage.CountTransactions(ctx, "")
	if err != nil || n != int64(info.TransactionCount) {
		t.Errorf("sqlite mirror count = %d, %v", n, err)
	}
	if docs, _ := components.Keyword.DocCount(); docs != uint64(info.TransactionCount) {
		t.Errorf("keyword mirror count = %d", docs)
	}

	debit := models.Debit
	resp, err := components.Engine.Query(ctx, &models.SearchQuery{
		Query: "food delivery", TopK: 5, Filters: &models.Filters{Type: &debit},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.ResultsFound == 0 || resp.Summary == nil {
		t.Fatalf("expected results with a summary, got %+v", resp)
	}
	for _, r := range resp.Results {
		if r.Type != models.Debit {
			t.Errorf("filter violated: %+v", r.Transaction)
		}
	}

	status := localStatus(cfg, zap.NewNop())
	if !status.Index.Ready || status.Index.BuildID != info.BuildID {
		t.Errorf("local status = %+v, want build %s", status.Index, info.BuildID)
	}
	if u := status.DiskUsage; u == nil || u.Data == 0 || u.Index == 0 || u.Metadata == 0 || u.Database == 0 {
		t.Errorf("expected every artifact on disk, got %+v", status.DiskUsage)
	}
}

func TestVectorFactory_FallsBackToMemory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Vector.IndexType = "faiss"
	vi, err := vectorFactory(cfg, zap.NewNop())()
	if err != nil {
		t.Fatal(err)
	}
	defer vi.Close()
	if vi.Dimensions() != cfg.Embedding.Dimensions {
		t.Errorf("dimensions = %d", vi.Dimensions())
	}
}
