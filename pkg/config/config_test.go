package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/resumerag/pkg/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(writeConfig(t, "rag:\n  reranking: true\n"))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, 0.65, cfg.RAG.SimilarityThreshold)
	assert.Equal(t, 4000, cfg.RAG.MaxContextLength)
	assert.True(t, cfg.RAG.Reranking)
	assert.Equal(t, 1.10, cfg.RAG.MetricsBoost)
	assert.Equal(t, 1.15, cfg.RAG.SectionBoost)
	require.NotNil(t, cfg.RAG.KeywordBoost)
	assert.Equal(t, 0.05, *cfg.RAG.KeywordBoost)

	assert.Equal(t, 200, cfg.Chunking.MaxChunkSize)
	require.NotNil(t, cfg.Chunking.Overlap)
	assert.Equal(t, 30, *cfg.Chunking.Overlap)

	assert.Equal(t, "ollama", cfg.Embedder.Provider)
	assert.Equal(t, "http://localhost:11434", cfg.Embedder.BaseURL)
	assert.Equal(t, "nomic-embed-text:latest", cfg.Embedder.Model)
	assert.Equal(t, 768, cfg.Embedder.Dimension)
	assert.Equal(t, 10.0, cfg.Embedder.RateLimit)
	assert.Equal(t, 4, cfg.Embedder.MaxConcurrency)

	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadConfig_ExplicitValues(t *testing.T) {
	cfg, err := config.LoadConfig(writeConfig(t, `
rag:
  top_k: 8
  similarity_threshold: 0.5
  max_context_length: 2000
chunking:
  max_chunk_size: 120
  overlap: 20
  preserve_formatting: true
embedder:
  provider: hash
  dimension: 128
server:
  addr: ":9090"
`))
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.RAG.TopK)
	assert.Equal(t, 0.5, cfg.RAG.SimilarityThreshold)
	assert.Equal(t, 2000, cfg.RAG.MaxContextLength)
	assert.Equal(t, 120, cfg.Chunking.MaxChunkSize)
	require.NotNil(t, cfg.Chunking.Overlap)
	assert.Equal(t, 20, *cfg.Chunking.Overlap)
	assert.True(t, cfg.Chunking.PreserveFormatting)
	assert.Equal(t, "hash", cfg.Embedder.Provider)
	assert.Equal(t, 128, cfg.Embedder.Dimension)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadConfig_ExplicitZerosSurviveDefaults(t *testing.T) {
	cfg, err := config.LoadConfig(writeConfig(t, `
chunking:
  overlap: 0
rag:
  keyword_boost: 0
`))
	require.NoError(t, err)

	require.NotNil(t, cfg.Chunking.Overlap)
	assert.Equal(t, 0, *cfg.Chunking.Overlap, "overlap: 0 means no overlap, not the default")
	require.NotNil(t, cfg.RAG.KeywordBoost)
	assert.Equal(t, 0.0, *cfg.RAG.KeywordBoost, "keyword_boost: 0 disables the boost")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "http://embedder.internal:11434")
	t.Setenv("EMBEDDING_MODEL", "mxbai-embed-large")
	t.Setenv("EMBEDDING_DIM", "1024")
	t.Setenv("SERVER_ADDR", ":7070")

	cfg, err := config.LoadConfig(writeConfig(t, "embedder:\n  model: from-file\n"))
	require.NoError(t, err)

	assert.Equal(t, "http://embedder.internal:11434", cfg.Embedder.BaseURL)
	assert.Equal(t, "mxbai-embed-large", cfg.Embedder.Model)
	assert.Equal(t, 1024, cfg.Embedder.Dimension)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	_, err := config.LoadConfig(writeConfig(t, "rag: [not a map"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidValuesRejected(t *testing.T) {
	cases := map[string]string{
		"negative top_k":         "rag:\n  top_k: -1\n",
		"threshold above one":    "rag:\n  similarity_threshold: 1.5\n",
		"overlap >= max size":    "chunking:\n  max_chunk_size: 50\n  overlap: 50\n",
		"negative overlap":       "chunking:\n  overlap: -5\n",
		"negative keyword boost": "rag:\n  keyword_boost: -0.1\n",
		"unknown provider":       "embedder:\n  provider: openai\n",
		"negative rate limit":    "embedder:\n  rate_limit: -2\n",
		"negative concurrency":   "embedder:\n  max_concurrency: -3\n",
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &config.Config{}
	cfg.RAG.TopK = -1
	cfg.RAG.SimilarityThreshold = 2
	cfg.RAG.MaxContextLength = 1
	cfg.Chunking.MaxChunkSize = 100
	overlap := 10
	cfg.Chunking.Overlap = &overlap
	cfg.Embedder.Provider = "hash"
	cfg.Embedder.Dimension = 64
	cfg.Embedder.RateLimit = 1
	cfg.Embedder.MaxConcurrency = 1

	errs := cfg.Validate()
	require.Len(t, errs, 2)

	fields := []string{errs[0].Field, errs[1].Field}
	assert.Contains(t, fields, "rag.top_k")
	assert.Contains(t, fields, "rag.similarity_threshold")
}
