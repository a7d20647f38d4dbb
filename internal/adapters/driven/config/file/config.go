package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the application configuration, loaded from a TOML file.
type Config struct {
	Storage   StorageConfig   `toml:"storage"`
	Embedding EmbeddingConfig `toml:"embedding"`
	LLM       LLMConfig       `toml:"llm"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `toml:"backend"`

	// DataDir is where the sqlite backend keeps its database.
	// Empty means ~/.ragkit/data.
	DataDir string `toml:"data_dir"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "openai" or "ollama".
	Provider string `toml:"provider"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `toml:"base_url"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// APIKey authenticates against the provider. The OPENAI_API_KEY
	// environment variable takes precedence over this value.
	APIKey string `toml:"api_key"`

	// BatchSize is the number of texts embedded per request group.
	BatchSize int `toml:"batch_size"`

	// BatchesPerSecond throttles request groups.
	BatchesPerSecond float64 `toml:"batches_per_second"`
}

// LLMConfig configures the optional answer-generation model.
type LLMConfig struct {
	// Enabled turns answer generation on. When false, queries return
	// retrieved context and citations without generated text.
	Enabled bool `toml:"enabled"`

	// Provider is "openai" or "ollama".
	Provider string `toml:"provider"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `toml:"base_url"`

	// Model is the chat model name.
	Model string `toml:"model"`

	// APIKey authenticates against the provider. The OPENAI_API_KEY
	// environment variable takes precedence over this value.
	APIKey string `toml:"api_key"`
}

// ChunkingConfig tunes the document chunker.
type ChunkingConfig struct {
	// BaseSize is the target passage size in characters before
	// adaptive adjustment.
	BaseSize int `toml:"base_size"`

	// OverlapRatio is the fraction of each passage repeated at the
	// start of the next one.
	OverlapRatio float64 `toml:"overlap_ratio"`
}

// RetrievalConfig tunes query defaults.
type RetrievalConfig struct {
	// TopK is the default number of passages retrieved per query.
	TopK int `toml:"top_k"`

	// MinSimilarity is the default relevance threshold.
	MinSimilarity float64 `toml:"min_similarity"`

	// MaxContextLength is the default context character budget.
	MaxContextLength int `toml:"max_context_length"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend: "memory",
		},
		Embedding: EmbeddingConfig{
			Provider:         "ollama",
			Model:            "nomic-embed-text",
			BatchSize:        10,
			BatchesPerSecond: 2.0,
		},
		LLM: LLMConfig{
			Enabled:  false,
			Provider: "ollama",
			Model:    "llama3.2",
		},
		Chunking: ChunkingConfig{
			BaseSize:     900,
			OverlapRatio: 0.22,
		},
		Retrieval: RetrievalConfig{
			TopK:             5,
			MinSimilarity:    0.5,
			MaxContextLength: 4000,
		},
	}
}

// DefaultPath returns the default config file location,
// ~/.ragkit/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".ragkit", "config.toml"), nil
}

// LoadConfig reads the TOML file at path, layered over defaults.
// A missing file is not an error; defaults are returned as-is.
// API keys from the environment override the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if cfg.Embedding.Provider == "openai" && cfg.Embedding.APIKey == "" {
			cfg.Embedding.APIKey = key
		}
		if cfg.LLM.Provider == "openai" && cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = key
		}
	}

	return cfg, nil
}

// SaveConfig writes the configuration to path with restricted
// permissions, creating the directory if needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
