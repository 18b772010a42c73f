// Package main is the Tango CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Timeless-inc/Tango/internal/answer"
	"github.com/Timeless-inc/Tango/internal/assistant"
	"github.com/Timeless-inc/Tango/internal/cli"
	"github.com/Timeless-inc/Tango/internal/config"
	"github.com/Timeless-inc/Tango/internal/embedding"
	"github.com/Timeless-inc/Tango/internal/history"
	"github.com/Timeless-inc/Tango/internal/ingest"
	"github.com/Timeless-inc/Tango/internal/keyword"
	"github.com/Timeless-inc/Tango/internal/models"
	"github.com/Timeless-inc/Tango/internal/retrieval"
	"github.com/Timeless-inc/Tango/internal/server"
	"github.com/Timeless-inc/Tango/internal/vectordb"
	"github.com/Timeless-inc/Tango/internal/watcher"
	"github.com/Timeless-inc/Tango/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/tango/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development). If no config
// file exists at all, built-in defaults are used.
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
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			var cfg config.Config
			config.ApplyDefaults(&cfg)
			return &cfg, "(defaults)", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "add":
		runAdd()
	case "ingest":
		runIngest()
	case "list":
		runList()
	case "delete":
		runDelete()
	case "reset":
		runReset()
	case "history":
		runHistory()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("tango version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`Tango - institutional assistant

Usage: tango <command> [flags]

Commands:
  server    Start the API server
  ask       Ask the assistant a question
  add       Add documents to the knowledge base
  ingest    Upload files to the knowledge base
  list      List stored documents
  delete    Delete documents by id
  reset     Wipe the knowledge base
  history   Show recent question/answer exchanges
  status    Show server status
  version   Print version
  help      Show this help

Run "tango <command> -h" for command flags.
`)
}

func newEmbedder(cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	if cfg.Endpoint == "mock" {
		return embedding.NewMockEmbedder(cfg.Dimensions), nil
	}
	inner, err := embedding.NewHTTPEmbedder(cfg.Endpoint, cfg.Model, cfg.Dimensions, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return embedding.NewCachedEmbedder(inner, cfg.CacheSize), nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	embedder, err := newEmbedder(&cfg.Embedding)
	if err != nil {
		logger.Fatal("failed to create embedder", zap.Error(err))
	}
	defer func() { _ = embedder.Close() }()

	store := vectordb.NewCollection(cfg.Storage.Collection, cfg.Storage.DataDir, embedder)
	if err := store.Open(context.Background()); err != nil {
		logger.Fatal("failed to open collection", zap.Error(err))
	}
	logger.Info("collection opened",
		zap.String("collection", cfg.Storage.Collection),
		zap.Int("documents", store.Count()),
	)

	kw, err := keyword.New()
	if err != nil {
		logger.Fatal("failed to create keyword index", zap.Error(err))
	}
	defer func() { _ = kw.Close() }()
	refreshKeyword := func() {
		docs, metas := store.Documents()
		if err := kw.Rebuild(docs, metas); err != nil {
			logger.Error("keyword index rebuild failed", zap.Error(err))
		}
	}
	refreshKeyword()

	hist, err := history.NewStore(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open history database", zap.Error(err))
	}
	defer func() { _ = hist.Close() }()

	filter := retrieval.NewFilter(&cfg.Retrieval)
	composer := answer.NewComposer(&cfg.Answer, nil)
	service := assistant.NewService(store, filter, composer, &cfg.Retrieval, logger)
	ingestor := ingest.NewIngestor(store, cfg.Watch.ChunkSize, refreshKeyword, logger)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watch *watcher.Watcher
	if len(cfg.Watch.Directories) > 0 {
		watch = watcher.New(
			cfg.Watch.Directories,
			cfg.Watch.Extensions,
			func(path string) {
				if _, err := ingestor.IngestFile(context.Background(), path); err != nil {
					logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
				}
			},
			func(path string) {
				if _, err := ingestor.RemoveSource(context.Background(), filepath.Base(path)); err != nil {
					logger.Warn("watch remove failed", zap.String("path", path), zap.Error(err))
				}
			},
			logger,
		)
		if err := watch.Start(watchCtx); err != nil {
			logger.Fatal("failed to start watcher", zap.Error(err))
		}
		watch.SyncExisting()
	}

	srv := server.NewServer(service, store, ingestor, kw, hist, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	if watch != nil {
		watch.Stop()
	}
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// joinArgs joins positional args with spaces so multi-word input works the
// same with or without shell quoting.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	topK := fs.Int("top-k", 0, "override number of candidates to retrieve")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	query := joinArgs(fs.Args())
	if query == "" {
		fmt.Fprintln(os.Stderr, "Usage: tango ask [flags] <question>")
		os.Exit(1)
	}
	format, err := cli.ParseFormat(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var resp models.QueryResponse
	req := models.QueryRequest{Query: query, TopK: *topK}
	if err := postJSON(*serverURL+"/api/v1/query", req, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteAnswer(os.Stdout, &resp, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runAdd() {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	source := fs.String("source", "", "source name to attach to the document")
	title := fs.String("title", "", "title to attach to the document")
	_ = fs.Parse(os.Args[2:])

	text := joinArgs(fs.Args())
	if text == "" {
		fmt.Fprintln(os.Stderr, "Usage: tango add [flags] <document text>")
		os.Exit(1)
	}

	doc := models.DocumentInput{Text: text}
	if *source != "" || *title != "" {
		doc.Metadata = map[string]any{}
		if *source != "" {
			doc.Metadata["source"] = *source
		}
		if *title != "" {
			doc.Metadata["title"] = *title
		}
	}
	batch := models.DocumentBatch{Documents: []models.DocumentInput{doc}}

	var resp struct {
		IDs   []int `json:"ids"`
		Count int   `json:"count"`
	}
	if err := postJSON(*serverURL+"/api/v1/documents", batch, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Add failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Added %d document(s), ids %v\n", resp.Count, resp.IDs)
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: tango ingest [flags] <file>...")
		os.Exit(1)
	}
	for _, path := range fs.Args() {
		var resp struct {
			Filename string `json:"filename"`
			Chunks   int    `json:"chunks"`
		}
		if err := uploadFile(*serverURL+"/api/v1/ingest", path, &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Ingest %s failed: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Ingested %s (%d chunks)\n", resp.Filename, resp.Chunks)
	}
}

func runList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseFormat(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var list models.DocumentListResponse
	if err := getJSON(*serverURL+"/api/v1/documents", &list); err != nil {
		fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteDocumentList(os.Stdout, &list, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: tango delete [flags] <id>...")
		os.Exit(1)
	}
	ids := make([]int, 0, fs.NArg())
	for _, arg := range fs.Args() {
		id, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid id %q\n", arg)
			os.Exit(1)
		}
		ids = append(ids, id)
	}

	var resp struct {
		Deleted   bool `json:"deleted"`
		Remaining int  `json:"remaining"`
	}
	if err := deleteJSON(*serverURL+"/api/v1/documents", models.DeleteRequest{IDs: ids}, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
		os.Exit(1)
	}
	if !resp.Deleted {
		fmt.Println("Nothing deleted.")
		return
	}
	fmt.Printf("Deleted. %d document(s) remaining.\n", resp.Remaining)
	fmt.Println("Note: document ids are positional and have been renumbered.")
}

func runReset() {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	yes := fs.Bool("yes", false, "confirm wiping the knowledge base")
	_ = fs.Parse(os.Args[2:])

	if !*yes {
		fmt.Fprintln(os.Stderr, "Reset wipes every stored document. Re-run with -yes to confirm.")
		os.Exit(1)
	}
	var resp map[string]string
	if err := postJSON(*serverURL+"/api/v1/reset", models.ResetRequest{Confirm: true}, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Reset failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Knowledge base reset.")
}

func runHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	limit := fs.Int("limit", 20, "number of exchanges to show")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseFormat(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var resp struct {
		Exchanges []history.Exchange `json:"exchanges"`
	}
	url := fmt.Sprintf("%s/api/v1/history?limit=%d", *serverURL, *limit)
	if err := getJSON(url, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "History failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteHistory(os.Stdout, resp.Exchanges, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseFormat(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var status map[string]any
	if err := getJSON(*serverURL+"/api/v1/status", &status); err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func postJSON(url string, body, into any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return decodeResponse(resp, into)
}

func getJSON(url string, into any) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return decodeResponse(resp, into)
}

func deleteJSON(url string, body, into any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodDelete, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return decodeResponse(resp, into)
}

func uploadFile(url, path string, into any) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	resp, err := http.Post(url, mw.FormDataContentType(), &buf)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return decodeResponse(resp, into)
}

func decodeResponse(resp *http.Response, into any) error {
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if into == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
