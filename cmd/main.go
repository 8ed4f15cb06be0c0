package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/xhad/resumerag/internal/models"
	"github.com/xhad/resumerag/internal/observe"
	"github.com/xhad/resumerag/internal/types"
	"github.com/xhad/resumerag/pkg/chunker"
	cfgPkg "github.com/xhad/resumerag/pkg/config"
	"github.com/xhad/resumerag/pkg/llm"
	"github.com/xhad/resumerag/pkg/rag"
	"github.com/xhad/resumerag/pkg/store"
	"github.com/xhad/resumerag/server"
)

type Flags struct {
	ConfigPath string
	ResumePath string
	Serve      bool
	Provider   string
	Rerank     bool
}

func main() {
	flags := parseFlags()

	if err := run(flags); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() Flags {
	var flags Flags

	flag.StringVar(&flags.ConfigPath, "config", "", "Path to config file")
	flag.StringVar(&flags.ResumePath, "resume", "", "Path to a plain-text resume file")
	flag.BoolVar(&flags.Serve, "serve", false, "Run the websocket session server")
	flag.StringVar(&flags.Provider, "provider", "", "Embedding provider (ollama or hash)")
	flag.BoolVar(&flags.Rerank, "rerank", false, "Enable heuristic re-ranking")
	flag.Parse()

	return flags
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(flags Flags) error {
	cfg, err := cfgPkg.LoadConfig(flags.ConfigPath)
	if err != nil {
		return err
	}
	if flags.Provider != "" {
		cfg.Embedder.Provider = flags.Provider
	}
	if flags.Rerank {
		cfg.RAG.Reranking = true
	}

	if flags.Serve {
		logger, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer logger.Sync()
		return server.New(cfg, logger).Run()
	}

	if flags.ResumePath == "" {
		return fmt.Errorf("either -resume or -serve is required")
	}

	data, err := os.ReadFile(flags.ResumePath)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	svc := newSession(cfg)
	defer svc.Dispose()

	spinner := getSpinner(" Chunking and embedding resume...")
	ctx := context.Background()
	err = svc.Initialize(ctx, string(data))
	spinner.Finish()
	if err != nil {
		return err
	}

	stats := svc.Stats()
	color.Green("✓ Indexed %d chunks from %s\n", stats.ChunksStored, flags.ResumePath)

	// Interactive retrieval loop with colored output
	color.Cyan("\nQuery your resume evidence (type 'exit' to quit, ':queries <type>' for a full analysis pass)")

	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := color.New(color.FgGreen).PrintfFunc()

	for {
		userPrompt("\nQuery: ")
		if !scanner.Scan() {
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if strings.ToLower(query) == "exit" {
			break
		}
		if query == "" {
			continue
		}

		if strings.HasPrefix(query, ":queries") {
			analysisType := strings.TrimSpace(strings.TrimPrefix(query, ":queries"))
			queries := svc.GenerateQueries(analysisType, "")
			color.Blue("Running %d queries: %s", len(queries), strings.Join(queries, " / "))

			rc, err := svc.RetrieveMultiQueryContext(ctx, queries)
			if err != nil {
				color.Red("Error: %v\n", err)
				continue
			}
			printContext(rc)
			continue
		}

		querySpinner := getSpinner(" Searching resume...")
		start := time.Now()
		rc, err := svc.RetrieveContext(ctx, query)
		querySpinner.Finish()

		if err != nil {
			color.Red("Error: %v\n", err)
			continue
		}

		color.Blue("Retrieved %d chunks in %s", len(rc.Chunks), time.Since(start).Round(time.Millisecond))
		printContext(rc)
	}

	return nil
}

func printContext(rc models.RAGContext) {
	if len(rc.Chunks) == 0 {
		color.Yellow("No resume content matched — critique would run uncited.")
		return
	}

	for i, r := range rc.Chunks {
		cite := rc.Citations[i]
		color.Cyan("\n[%s] %s (%s, score %.2f)", cite.ID, cite.Section, r.Relevance, r.Score)
		fmt.Println(r.Chunk.Content)
		color.Blue("  source offsets %d-%d", cite.StartIndex, cite.EndIndex)
	}
}

// newSession wires one chunker/store/service trio, the same shape the
// server builds per connection.
func newSession(cfg *cfgPkg.Config) *rag.Service {
	var embedder types.Embedder
	emb, err := llm.NewProvider(cfg.Embedder.Provider, llm.EmbedderConfig{
		Model:     cfg.Embedder.Model,
		BaseURL:   cfg.Embedder.BaseURL,
		Dimension: cfg.Embedder.Dimension,
		RateLimit: cfg.Embedder.RateLimit,
	})
	if err != nil {
		color.Yellow("! embedding provider unavailable, using local fallback: %v", err)
	} else {
		embedder = emb
	}

	obs := observe.Nop()
	vs := store.NewWithConfig(store.VectorStoreConfig{
		Dimension:      cfg.Embedder.Dimension,
		MaxConcurrency: cfg.Embedder.MaxConcurrency,
		MetricsBoost:   cfg.RAG.MetricsBoost,
		SectionBoost:   cfg.RAG.SectionBoost,
		KeywordBoost:   *cfg.RAG.KeywordBoost,
	}, embedder, obs)

	return rag.NewService(rag.ServiceConfig{
		TopK:                cfg.RAG.TopK,
		SimilarityThreshold: cfg.RAG.SimilarityThreshold,
		MaxContextLength:    cfg.RAG.MaxContextLength,
		Reranking:           cfg.RAG.Reranking,
		Chunking: chunker.ChunkerConfig{
			MaxChunkSize:       cfg.Chunking.MaxChunkSize,
			Overlap:            *cfg.Chunking.Overlap,
			RespectBoundaries:  cfg.Chunking.RespectBoundaries,
			PreserveFormatting: cfg.Chunking.PreserveFormatting,
		},
	}, vs, obs)
}
