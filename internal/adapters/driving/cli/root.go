// Package cli implements the ragkit command-line interface.
// Commands share a service graph wired from the TOML configuration;
// tests inject mock services instead.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/veldt-labs/ragkit/internal/adapters/driven/config/file"
	"github.com/veldt-labs/ragkit/internal/adapters/driven/embedding"
	ollamaembed "github.com/veldt-labs/ragkit/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/veldt-labs/ragkit/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/veldt-labs/ragkit/internal/adapters/driven/llm/ollama"
	openaillm "github.com/veldt-labs/ragkit/internal/adapters/driven/llm/openai"
	"github.com/veldt-labs/ragkit/internal/adapters/driven/source/filesystem"
	"github.com/veldt-labs/ragkit/internal/adapters/driven/storage/memory"
	"github.com/veldt-labs/ragkit/internal/adapters/driven/storage/sqlite"
	"github.com/veldt-labs/ragkit/internal/chunker"
	"github.com/veldt-labs/ragkit/internal/core/ports/driven"
	"github.com/veldt-labs/ragkit/internal/core/ports/driving"
	"github.com/veldt-labs/ragkit/internal/core/services"
	"github.com/veldt-labs/ragkit/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	verboseFlag bool
	configFlag  string
)

// Wired services. Commands access these after ensureServices; tests set
// them directly to bypass config-driven wiring.
var (
	ingestService driving.Ingestor
	askService    driving.Asker
	appConfig     file.Config
	closers       []io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "ragkit",
	Short: "Local retrieval-augmented question answering",
	Long: `ragkit ingests documents into a searchable corpus and answers
questions against it using embedding-based retrieval.

Documents are chunked into overlapping passages, embedded, and indexed.
Queries retrieve the most similar passages and, when a language model is
configured, generate an answer grounded in them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file (default ~/.ragkit/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	defer closeServices()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}

// ensureServices wires the service graph from configuration.
// Idempotent: already-wired services (including test doubles) are kept.
func ensureServices() error {
	if ingestService != nil && askService != nil {
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	appConfig = cfg

	docStore, vectorIndex, err := buildStorage(cfg.Storage)
	if err != nil {
		return err
	}

	embedder, err := buildEmbedder(cfg.Embedding)
	if err != nil {
		return err
	}
	closers = append(closers, embedder)

	llm, err := buildLLM(cfg.LLM)
	if err != nil {
		return err
	}
	if llm != nil {
		closers = append(closers, llm)
	}

	chk := chunker.New(
		chunker.WithBaseSize(cfg.Chunking.BaseSize),
		chunker.WithOverlapRatio(cfg.Chunking.OverlapRatio),
	)

	if ingestService == nil {
		ingestService = services.NewIngestService(
			docStore, vectorIndex, embedder, chk,
			services.WithSource(filesystem.NewSource()),
		)
	}
	if askService == nil {
		askService = services.NewAskService(
			docStore, vectorIndex, embedder, llm,
			services.WithSystemPrompt(loadAnswerPrompt()),
		)
	}
	return nil
}

// loadConfig reads the config file from --config or the default path.
func loadConfig() (file.Config, error) {
	path := configFlag
	if path == "" {
		var err error
		path, err = file.DefaultPath()
		if err != nil {
			return file.Config{}, err
		}
	}
	return file.LoadConfig(path)
}

// loadAnswerPrompt reads the user-editable answer prompt, falling back
// to the built-in one on any failure.
func loadAnswerPrompt() string {
	store, err := file.NewPromptStore("")
	if err != nil {
		return ""
	}
	prompt, err := store.Load(file.PromptAnswerSystem)
	if err != nil {
		return ""
	}
	return prompt
}

// buildStorage creates the document store and vector index for the
// configured backend.
func buildStorage(cfg file.StorageConfig) (driven.DocumentStore, driven.VectorIndex, error) {
	switch cfg.Backend {
	case "", "memory":
		return memory.NewDocumentStore(), memory.NewVectorIndex(), nil
	case "sqlite":
		store, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		closers = append(closers, store)
		return store.DocumentStore(), store.VectorIndex(), nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// buildEmbedder creates the configured embedding provider wrapped in
// the batching decorator.
func buildEmbedder(cfg file.EmbeddingConfig) (driven.EmbeddingService, error) {
	var inner driven.EmbeddingService

	switch cfg.Provider {
	case "", "ollama":
		inner = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	case "openai":
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("create openai embedder: %w", err)
		}
		inner = svc
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	var opts []embedding.BatcherOption
	if cfg.BatchSize > 0 {
		opts = append(opts, embedding.WithBatchSize(cfg.BatchSize))
	}
	if cfg.BatchesPerSecond > 0 {
		opts = append(opts, embedding.WithRate(cfg.BatchesPerSecond, 1))
	}
	return embedding.NewBatcher(inner, opts...), nil
}

// buildLLM creates the configured generation provider, or nil when
// generation is disabled.
func buildLLM(cfg file.LLMConfig) (driven.LLMService, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Provider {
	case "", "ollama":
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}), nil
	case "openai":
		svc, err := openaillm.NewLLMService(openaillm.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("create openai llm: %w", err)
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// closeServices releases everything wired by ensureServices.
func closeServices() {
	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	closers = nil
	if err := errors.Join(errs...); err != nil {
		logger.Warn("Shutdown: %v", err)
	}
}
