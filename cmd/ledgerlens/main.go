// Package main is the LedgerLens CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/ledgerlens/internal/cli"
	"github.com/hyperjump/ledgerlens/internal/config"
	"github.com/hyperjump/ledgerlens/internal/generator"
	"github.com/hyperjump/ledgerlens/internal/models"
	"github.com/hyperjump/ledgerlens/internal/server"
	"github.com/hyperjump/ledgerlens/internal/storage"
	"github.com/hyperjump/ledgerlens/internal/txindex"
	"github.com/hyperjump/ledgerlens/internal/watcher"
	"github.com/hyperjump/ledgerlens/pkg/utils"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/ledgerlens/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// setup loads config and builds the logger, exiting on failure.
func setup(configPath string, debugFlag bool) (*config.Config, string, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if debugFlag {
		cfg.Debug = true
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, resolved, logger
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "export":
		runExport()
	case "index":
		runIndex()
	case "generate":
		runGenerate()
	case "status":
		runStatus()
	case "init":
		runInit()
	case "version", "--version", "-v":
		fmt.Printf("ledgerlens version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger := setup(*configPath, *debug)
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", cfg.Debug),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Queries answer 503 until the first index is ready.
	go func() {
		info, err := components.Indexer.Bootstrap(ctx)
		if err != nil {
			logger.Error("Index bootstrap failed", zap.Error(missingData(err, cfg)))
			return
		}
		logger.Info("Index ready",
			zap.Int("transactions", info.TransactionCount),
			zap.String("build_id", info.BuildID))
	}()

	if cfg.Watch.Enabled {
		watchSvc := watcher.NewWatcher(
			[]string{cfg.Storage.DataPath},
			func(path string) {
				logger.Info("Data file changed, rebuilding index", zap.String("path", path))
				if _, err := components.Indexer.Rebuild(ctx); err != nil {
					if errors.Is(err, models.ErrRebuildInProgress) {
						logger.Info("Rebuild already running, skipping")
						return
					}
					logger.Warn("watch rebuild failed", zap.Error(err))
				}
			},
			watcher.WithLogger(logger),
			watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond),
		)
		if err := watchSvc.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
	}

	srv := server.NewServer(
		components.Engine,
		components.Indexer,
		components.Storage,
		components.Keyword,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet, name string) {
	fmt.Fprintf(fs.Output(), "Usage: ledgerlens %s [flags] <query>\n\n", name)
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  ledgerlens search food delivery
  ledgerlens search --top-k 10 --type Debit --month 2024-03 "online shopping"
  ledgerlens search --user user_2 --min-amount 5000 rent
  ledgerlens export --out rent.xlsx rent payments
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchConfigPathFromArgs returns the value of -config/--config from args if present, else defaultPath.
func searchConfigPathFromArgs(args []string, defaultPath string) string {
	for i, a := range args {
		if (a == "-config" || a == "--config") && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if v, ok := strings.CutPrefix(a, "-config="); ok {
			return v
		}
	}
	return defaultPath
}

// searchTopKDefaultFromConfig returns the configured default top_k, or models.DefaultTopK
// when the config cannot be loaded.
func searchTopKDefaultFromConfig(path string) int {
	cfg, _, err := loadConfig(path)
	if err != nil || cfg == nil || cfg.Search.DefaultTopK <= 0 {
		return models.DefaultTopK
	}
	return cfg.Search.DefaultTopK
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// filterFlags are the optional attribute predicates shared by search and export.
type filterFlags struct {
	minAmount, maxAmount string
	direction            string
	category             string
	userID               string
	month                string
	contains             string
}

func (f *filterFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.minAmount, "min-amount", "", "only results with amount >= value")
	fs.StringVar(&f.maxAmount, "max-amount", "", "only results with amount <= value")
	fs.StringVar(&f.direction, "type", "", "only Credit or Debit results")
	fs.StringVar(&f.category, "category", "", "only results in this category (exact match)")
	fs.StringVar(&f.userID, "user", "", "only results for this user id")
	fs.StringVar(&f.month, "month", "", "only results whose date starts with this prefix (YYYY-MM)")
	fs.StringVar(&f.contains, "contains", "", "only results whose description contains this text (case-insensitive)")
}

// build returns nil when no predicate is set.
func (f *filterFlags) build() (*models.Filters, error) {
	out := &models.Filters{}
	for _, p := range []struct {
		name string
		raw  string
		dst  **float64
	}{{"min-amount", f.minAmount, &out.MinAmount}, {"max-amount", f.maxAmount, &out.MaxAmount}} {
		if p.raw == "" {
			continue
		}
		n, err := strconv.ParseFloat(p.raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: --%s must be a number", models.ErrInvalidInput, p.name)
		}
		*p.dst = &n
	}
	if f.direction != "" {
		d := models.Direction(f.direction)
		if d != models.Credit && d != models.Debit {
			return nil, fmt.Errorf("%w: --type must be Credit or Debit", models.ErrInvalidInput)
		}
		out.Type = &d
	}
	for _, p := range []struct {
		raw string
		dst **string
	}{{f.category, &out.Category}, {f.userID, &out.UserID}, {f.month, &out.Month}, {f.contains, &out.DescriptionContains}} {
		if p.raw != "" {
			v := p.raw
			*p.dst = &v
		}
	}
	if out.Empty() {
		return nil, nil
	}
	return out, nil
}

// searchValues encodes q as GET /api/v1/search parameters.
func searchValues(q *models.SearchQuery) url.Values {
	v := url.Values{}
	v.Set("query", q.Query)
	v.Set("top_k", strconv.Itoa(q.TopK))
	f := q.Filters
	if f == nil {
		return v
	}
	if f.MinAmount != nil {
		v.Set("min_amount", strconv.FormatFloat(*f.MinAmount, 'f', -1, 64))
	}
	if f.MaxAmount != nil {
		v.Set("max_amount", strconv.FormatFloat(*f.MaxAmount, 'f', -1, 64))
	}
	if f.Type != nil {
		v.Set("type", string(*f.Type))
	}
	if f.Category != nil {
		v.Set("category", *f.Category)
	}
	if f.UserID != nil {
		v.Set("user_id", *f.UserID)
	}
	if f.Month != nil {
		v.Set("month", *f.Month)
	}
	if f.DescriptionContains != nil {
		v.Set("description_contains", *f.DescriptionContains)
	}
	return v
}

type queryCommand struct {
	fs         *flag.FlagSet
	configPath *string
	serverURL  *string
	topK       *int
	filters    filterFlags
}

// parseQueryCommand parses the flags shared by search and export and returns the query.
func parseQueryCommand(name string, args []string, extra func(fs *flag.FlagSet)) (*queryCommand, *models.SearchQuery) {
	args = searchArgsReorder(args)
	defaultTopK := searchTopKDefaultFromConfig(searchConfigPathFromArgs(args, defaultConfigPath))

	c := &queryCommand{fs: flag.NewFlagSet(name, flag.ExitOnError)}
	c.configPath = c.fs.String("config", defaultConfigPath, "config file path (for direct mode and default top-k)")
	c.serverURL = c.fs.String("server", defaultServerURL, "server URL (empty = query the local index directly)")
	c.topK = c.fs.Int("top-k", defaultTopK, "number of results (1-200)")
	c.filters.register(c.fs)
	if extra != nil {
		extra(c.fs)
	}
	c.fs.Usage = func() { printSearchUsage(c.fs, name) }
	_ = c.fs.Parse(args)

	queryStr := buildSearchQuery(c.fs.Args())
	if queryStr == "" {
		printSearchUsage(c.fs, name)
		os.Exit(1)
	}
	filters, err := c.filters.build()
	if err != nil {
		fail("%v", err)
	}
	return c, &models.SearchQuery{Query: queryStr, TopK: *c.topK, Filters: filters}
}

// execute runs q against the server, or against the local index when no server URL is set.
func (c *queryCommand) execute(q *models.SearchQuery) (*models.SearchResponse, error) {
	if *c.serverURL != "" {
		return searchViaHTTP(*c.serverURL, q)
	}
	cfg, _, logger := setup(*c.configPath, false)
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer components.Close()
	ctx := context.Background()
	if _, err := components.Indexer.Bootstrap(ctx); err != nil {
		return nil, missingData(err, cfg)
	}
	return components.Engine.Query(ctx, q)
}

func runSearch() {
	var outputFormat *string
	cmd, q := parseQueryCommand("search", os.Args[2:], func(fs *flag.FlagSet) {
		outputFormat = fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	})
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fail("%v", err)
	}
	response, err := cmd.execute(q)
	if err != nil {
		fail("Search failed: %v", err)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fail("Output failed: %v", err)
	}
}

func runExport() {
	var out *string
	cmd, q := parseQueryCommand("export", os.Args[2:], func(fs *flag.FlagSet) {
		out = fs.String("out", "results.xlsx", "output .xlsx path")
	})
	response, err := cmd.execute(q)
	if err != nil {
		fail("Search failed: %v", err)
	}
	if err := cli.ExportXLSX(*out, response); err != nil {
		fail("Export failed: %v", err)
	}
	fmt.Printf("Exported %d result(s) to %s\n", response.ResultsFound, *out)
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	resp, err := http.Get(strings.TrimRight(serverURL, "/") + "/api/v1/search?" + searchValues(query).Encode())
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, httpError(resp)
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func httpError(resp *http.Response) error {
	b, _ := io.ReadAll(resp.Body)
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &body) == nil && body.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL; when set, asks the running server to rebuild instead of building locally")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if *serverURL != "" {
		info, err := rebuildViaHTTP(*serverURL)
		if err != nil {
			fail("Rebuild failed: %v", err)
		}
		_ = cli.WriteIndexInfo(os.Stdout, *info, cli.OutputText)
		return
	}

	cfg, _, logger := setup(*configPath, *debug)
	defer logger.Sync()

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.Default(int64(total), "embedding")
		}
		_ = bar.Set(done)
	}
	components, err := initializeComponents(cfg, logger, withProgress(progress))
	if err != nil {
		fail("Failed to initialize: %v", err)
	}
	defer components.Close()

	start := time.Now()
	info, err := components.Indexer.Rebuild(context.Background())
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		fail("Indexing failed: %v", missingData(err, cfg))
	}
	fmt.Printf("\nIndexed %d transaction(s) in %s\n", info.TransactionCount, time.Since(start).Round(time.Millisecond))
	_ = cli.WriteIndexInfo(os.Stdout, info, cli.OutputText)
}

func rebuildViaHTTP(serverURL string) (*models.IndexInfo, error) {
	resp, err := http.Post(strings.TrimRight(serverURL, "/")+"/api/v1/index/rebuild", "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, httpError(resp)
	}
	var info models.IndexInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &info, nil
}

func runGenerate() {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	out := fs.String("out", "", "output JSON path (default: storage.data_path)")
	users := fs.Int("users", 0, "number of users (default: generator.num_users)")
	seed := fs.Int64("seed", 0, "random seed for a reproducible dataset (default: generator.seed)")
	force := fs.Bool("force", false, "overwrite an existing data file")
	_ = fs.Parse(os.Args[2:])

	cfg, _, logger := setup(*configPath, false)
	defer logger.Sync()

	path := cfg.Storage.DataPath
	if *out != "" {
		path = *out
	}
	if _, err := os.Stat(path); err == nil && !*force {
		fail("%s already exists (use --force to overwrite)", path)
	}
	gcfg := cfg.Generator
	if *users > 0 {
		gcfg.NumUsers = *users
	}
	if *seed != 0 {
		gcfg.Seed = *seed
	}
	txns := generator.New(gcfg).Generate()
	if err := storage.SaveTransactions(path, txns); err != nil {
		fail("Failed to save transactions: %v", err)
	}
	logger.Debug("generated transactions", zap.String("path", path), zap.Int("count", len(txns)))
	fmt.Printf("Generated and saved %d transactions to %s\n", len(txns), path)
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Index            models.IndexInfo       `json:"index"`
	KeywordDocuments *uint64                `json:"keyword_documents,omitempty"`
	DiskUsage        *storage.DiskUsage     `json:"disk_usage,omitempty"`
	Config           map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read the persisted index)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fail("%v", err)
	}

	var status *statusResponse
	if *serverURL != "" {
		status, err = statusViaHTTP(*serverURL)
		if err != nil {
			fail("Status failed: %v", err)
		}
	} else {
		cfg, _, logger := setup(*configPath, false)
		defer logger.Sync()
		status = localStatus(cfg, logger)
	}

	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fail("Output failed: %v", err)
		}
		return
	}
	_ = cli.WriteIndexInfo(os.Stdout, status.Index, cli.OutputText)
	if status.KeywordDocuments != nil {
		fmt.Printf("Keyword docs: %d\n", *status.KeywordDocuments)
	}
	if u := status.DiskUsage; u != nil {
		fmt.Printf("Disk usage:   %d bytes (data %d, database %d, index %d, metadata %d)\n",
			u.Total, u.Data, u.Database, u.Index, u.Metadata)
	}
	if len(status.Config) > 0 {
		fmt.Println("\n# configuration")
		for _, k := range []string{"embedding_backend", "embedding_dimensions", "vector_index_type",
			"data_path", "database_path", "index_path", "metadata_path"} {
			if v, ok := status.Config[k]; ok {
				fmt.Printf("%-21s %v\n", k+":", v)
			}
		}
	}
}

// localStatus reads the persisted index without building one.
func localStatus(cfg *config.Config, logger *zap.Logger) *statusResponse {
	st := cfg.Storage
	status := &statusResponse{Config: map[string]interface{}{
		"embedding_backend":    cfg.Embedding.Backend,
		"embedding_dimensions": cfg.Embedding.Dimensions,
		"vector_index_type":    cfg.Vector.IndexType,
		"data_path":            st.DataPath,
		"database_path":        st.DatabasePath,
		"index_path":           st.IndexPath,
		"metadata_path":        st.MetadataPath,
	}}
	if vi, err := vectorFactory(cfg, logger)(); err == nil {
		x := txindex.New(vi, txindex.WithLogger(logger))
		if err := x.Load(st.IndexPath, st.MetadataPath); err == nil {
			status.Index = x.Info()
		} else {
			logger.Debug("persisted index not loaded", zap.Error(err))
		}
		_ = x.Close()
	} else {
		logger.Warn("vector index unavailable", zap.Error(err))
	}
	usage, err := storage.MeasureDiskUsage(storage.Artifacts{
		DataPath:     st.DataPath,
		DatabasePath: st.DatabasePath,
		IndexPath:    st.IndexPath,
		MetadataPath: st.MetadataPath,
	})
	if err == nil {
		status.DiskUsage = &usage
	} else {
		logger.Warn("disk usage failed", zap.Error(err))
	}
	return status
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(strings.TrimRight(serverURL, "/") + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, httpError(resp)
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	out := fs.String("out", "config.yaml", "where to write the default config")
	backend := fs.String("backend", config.BackendONNX, "embedding backend: onnx or hash")
	_ = fs.Parse(os.Args[2:])

	if _, err := os.Stat(*out); err == nil {
		fail("%s already exists", *out)
	}
	cfg := &config.Config{Embedding: config.EmbeddingConfig{Backend: *backend}}
	config.ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		fail("%v", err)
	}
	if err := config.Save(*out, cfg); err != nil {
		fail("Failed to write config: %v", err)
	}
	fmt.Printf("Wrote %s\n", *out)
}

func printUsage() {
	fmt.Println(`ledgerlens - Semantic search over financial transactions

Usage:
  ledgerlens server [flags]            Start the HTTP server
  ledgerlens search [flags] <query>    Search transactions
  ledgerlens export [flags] <query>    Search and export results + summary to .xlsx
  ledgerlens index [flags]             Rebuild the index from the data file
  ledgerlens generate [flags]          Write a synthetic transaction data file
  ledgerlens status [flags]            Show index status
  ledgerlens init [flags]              Write a default config file
  ledgerlens version                   Show version
  ledgerlens help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/ledgerlens/config.yaml)
  --debug            Enable debug logging

Search / Export Flags:
  --config string      Config file path (direct mode; also supplies the default top-k)
  --server string      Server URL (default: http://localhost:8080). Use --server "" to query the local index directly.
  --top-k int          Number of results (default from config, or 5)
  --min-amount, --max-amount, --type, --category, --user, --month, --contains
                       Optional filters, all must pass
  --output string      search only: text or json (default: text)
  --out string         export only: .xlsx path (default: results.xlsx)

Index Flags:
  --config string    Config file path
  --server string    Ask a running server to rebuild instead of building locally

Generate Flags:
  --out string       Output path (default: storage.data_path)
  --users int        Number of users
  --seed int         Random seed
  --force            Overwrite an existing file

Status Flags:
  --server string    Server URL (default: http://localhost:8080). Use --server "" to read the persisted index.
  --output string    text or json

Examples:
  ledgerlens generate --seed 42
  ledgerlens index
  ledgerlens server
  ledgerlens search "food delivery"
  ledgerlens search --type Debit --month 2024-03 --output json shopping
  ledgerlens export --out travel.xlsx --category Travel trips
  ledgerlens status --output json`)
}
