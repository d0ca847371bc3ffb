package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"docquery/internal/errs"
	"docquery/internal/models"
	"docquery/internal/types"
	"docquery/pkg/config"
	"docquery/pkg/engine"
	"docquery/pkg/feed"
	"docquery/pkg/llm"
	"docquery/pkg/loader"
	"docquery/pkg/processor"
	"docquery/pkg/repl"
	"docquery/pkg/scraper"
	"docquery/pkg/store"
	"docquery/pkg/urlstore"
	"docquery/server"
)

type flags struct {
	updateMode string
	configPath string
	serveAddr  string
}

func main() {
	var f flags
	flag.StringVar(&f.updateMode, "u", "", "update the index from 'files' or 'rss' and exit")
	flag.StringVar(&f.configPath, "config", "", "path to config file")
	flag.StringVar(&f.serveAddr, "serve", "", "serve queries over WebSocket on this address instead of the console loop")
	flag.Parse()

	if err := run(f); err != nil {
		log.Fatal(err)
	}
}

func run(f flags) error {
	// .env is optional; the key check is not. The key only ever comes
	// from the environment, so it is checked before anything else runs.
	_ = godotenv.Load()
	if os.Getenv("OPENAI_API_KEY") == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is not set: %w", errs.ErrConfiguration)
	}

	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return fmt.Errorf("%v: %w", err, errs.ErrConfiguration)
	}
	if verrs := cfg.Validate(); len(verrs) > 0 {
		for _, ve := range verrs {
			color.Red("%v", ve)
		}
		return fmt.Errorf("invalid configuration: %w", errs.ErrConfiguration)
	}

	ctx := context.Background()

	switch f.updateMode {
	case "files", "rss", "url":
		return runIndexing(ctx, cfg, f.updateMode)
	case "":
	default:
		return fmt.Errorf("unknown -u mode %q, expected 'files' or 'rss': %w", f.updateMode, errs.ErrConfiguration)
	}

	idx, eng, err := newQueryEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer idx.Close()

	if f.serveAddr != "" {
		srv := server.New(server.Config{Engine: eng})
		color.Cyan("Serving queries on ws://%s/ws", f.serveAddr)
		return http.ListenAndServe(f.serveAddr, srv)
	}

	color.Cyan("Query your corpus (type 'exit' to quit)")
	return repl.Run(ctx, os.Stdin, os.Stdout, eng, repl.Options{
		Prompt:  "Input query: ",
		Spinner: cfg.Query.Spinner,
	})
}

func runIndexing(ctx context.Context, cfg *config.Config, mode string) error {
	docs, err := loadCorpus(ctx, cfg, mode)
	if err != nil {
		return err
	}
	color.Green("✓ Loaded %d documents", len(docs))

	idx, err := newStore(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer idx.Close()

	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:     cfg.OpenAI.EmbeddingModel,
		BatchSize: cfg.Query.BatchSize,
		APIKey:    cfg.OpenAI.APIKey,
		BaseURL:   cfg.OpenAI.BaseURL,
	})
	if err != nil {
		return err
	}

	proc := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:    cfg.Processor.ChunkSize,
		ChunkOverlap: cfg.Processor.ChunkOverlap,
	})

	bar := getProgressBar(len(docs), "Embedding documents...")
	builder := engine.NewBuilder(engine.BuilderConfig{
		Processor:  &proc,
		Embedder:   embedder,
		Store:      idx,
		OnDocument: func(string) { bar.Add(1) },
	})

	start := time.Now()
	count, err := builder.Build(ctx, docs)
	bar.Finish()
	if err != nil {
		return err
	}

	color.Green("\n✓ Indexed %d nodes from %d documents in %s", count, len(docs), time.Since(start).Round(time.Second))
	return nil
}

func loadCorpus(ctx context.Context, cfg *config.Config, mode string) ([]models.Document, error) {
	ld := loader.NewWithConfig(loader.LoaderConfig{
		DocumentsDir: cfg.Paths.DocumentsDir,
		URLs:         urlstore.New(cfg.Paths.RSSURLs, cfg.Paths.ArticleURLs),
		Feeds:        feed.New(nil),
		Pages: scraper.NewWithConfig(scraper.ScraperConfig{
			RateLimit: cfg.Scraper.RateLimit,
			Timeout:   time.Duration(cfg.Scraper.TimeoutSecs) * time.Second,
		}),
	})

	if mode == "files" {
		color.Blue("Indexing PDF documents from %s", cfg.Paths.DocumentsDir)
		return ld.LoadFiles(ctx)
	}
	color.Blue("Indexing articles from RSS feeds in %s", cfg.Paths.RSSURLs)
	return ld.LoadRSS(ctx)
}

func newQueryEngine(ctx context.Context, cfg *config.Config) (types.VectorStore, *engine.Engine, error) {
	idx, err := newStore(ctx, cfg, false)
	if err != nil {
		return nil, nil, err
	}

	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:     cfg.OpenAI.EmbeddingModel,
		BatchSize: cfg.Query.BatchSize,
		APIKey:    cfg.OpenAI.APIKey,
		BaseURL:   cfg.OpenAI.BaseURL,
	})
	if err != nil {
		idx.Close()
		return nil, nil, err
	}

	chat, err := llm.NewWithConfig(llm.ChatConfig{
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
	})
	if err != nil {
		idx.Close()
		return nil, nil, err
	}

	eng := engine.NewEngine(engine.EngineConfig{
		Store:    idx,
		Embedder: embedder,
		Chat:     chat,
		TopK:     cfg.Query.TopK,
	})
	return idx, eng, nil
}

// newStore opens the configured index backend. Indexing runs start from
// an empty index so the run overwrites the previous one wholesale.
func newStore(ctx context.Context, cfg *config.Config, indexing bool) (types.VectorStore, error) {
	switch cfg.Store.Backend {
	case "pgvector":
		return store.NewPGVectorWithConfig(ctx, store.PGVectorConfig{
			ConnString: cfg.Store.URL,
			TableName:  cfg.Store.TableName,
			VectorDim:  cfg.Store.VectorDim,
			Reset:      indexing,
		})
	default:
		if indexing {
			return store.NewFileIndex(cfg.Paths.IndexFile), nil
		}
		return store.OpenFileIndex(cfg.Paths.IndexFile)
	}
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
