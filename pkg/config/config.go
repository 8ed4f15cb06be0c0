package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	RAG struct {
		TopK                int     `yaml:"top_k"`
		SimilarityThreshold float64 `yaml:"similarity_threshold"`
		MaxContextLength    int     `yaml:"max_context_length"`
		Reranking           bool    `yaml:"reranking"`
		MetricsBoost        float64 `yaml:"metrics_boost"`
		SectionBoost        float64 `yaml:"section_boost"`
		// Pointer so an explicit `keyword_boost: 0` (disabled) survives
		// defaulting.
		KeywordBoost *float64 `yaml:"keyword_boost"`
	} `yaml:"rag"`

	Chunking struct {
		MaxChunkSize int `yaml:"max_chunk_size"`
		// Pointer so an explicit `overlap: 0` (no overlap) survives
		// defaulting.
		Overlap            *int `yaml:"overlap"`
		RespectBoundaries  bool `yaml:"respect_boundaries"`
		PreserveFormatting bool `yaml:"preserve_formatting"`
	} `yaml:"chunking"`

	Embedder struct {
		Provider       string  `yaml:"provider"`
		BaseURL        string  `yaml:"base_url"`
		Model          string  `yaml:"model"`
		Dimension      int     `yaml:"dimension"`
		RateLimit      float64 `yaml:"rate_limit"`
		MaxConcurrency int     `yaml:"max_concurrency"`
	} `yaml:"embedder"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/resumerag/config.yaml"),
			"/etc/resumerag/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	// Malformed config must fail at load time, not inside a retrieval call.
	if errs := config.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %v", errs[0])
	}

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.RAG.TopK == 0 {
		config.RAG.TopK = 5
	}
	if config.RAG.SimilarityThreshold == 0 {
		config.RAG.SimilarityThreshold = 0.65
	}
	if config.RAG.MaxContextLength == 0 {
		config.RAG.MaxContextLength = 4000
	}
	if config.RAG.MetricsBoost == 0 {
		config.RAG.MetricsBoost = 1.10
	}
	if config.RAG.SectionBoost == 0 {
		config.RAG.SectionBoost = 1.15
	}
	if config.RAG.KeywordBoost == nil {
		kb := 0.05
		config.RAG.KeywordBoost = &kb
	}

	if config.Chunking.MaxChunkSize == 0 {
		config.Chunking.MaxChunkSize = 200
	}
	if config.Chunking.Overlap == nil {
		overlap := 30
		config.Chunking.Overlap = &overlap
	}

	if config.Embedder.Provider == "" {
		config.Embedder.Provider = "ollama"
	}
	if config.Embedder.BaseURL == "" {
		config.Embedder.BaseURL = "http://localhost:11434"
	}
	if config.Embedder.Model == "" {
		config.Embedder.Model = "nomic-embed-text:latest"
	}
	if config.Embedder.Dimension == 0 {
		config.Embedder.Dimension = 768
	}
	if config.Embedder.RateLimit == 0 {
		config.Embedder.RateLimit = 10.0
	}
	if config.Embedder.MaxConcurrency == 0 {
		config.Embedder.MaxConcurrency = 4
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
}

func mergeWithEnv(config *Config) {
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.Embedder.BaseURL = baseURL
	}
	if model := os.Getenv("EMBEDDING_MODEL"); model != "" {
		config.Embedder.Model = model
	}
	if dim := os.Getenv("EMBEDDING_DIM"); dim != "" {
		if n, err := strconv.Atoi(dim); err == nil {
			config.Embedder.Dimension = n
		}
	}
	if addr := os.Getenv("SERVER_ADDR"); addr != "" {
		config.Server.Addr = addr
	}
}
