package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate RAG config
	if c.RAG.TopK < 1 {
		errors = append(errors, ValidationError{
			Field:   "rag.top_k",
			Message: "top_k must be at least 1",
		})
	}

	if c.RAG.SimilarityThreshold < 0 || c.RAG.SimilarityThreshold > 1 {
		errors = append(errors, ValidationError{
			Field:   "rag.similarity_threshold",
			Message: "similarity_threshold must be between 0 and 1",
		})
	}

	if c.RAG.MaxContextLength < 1 {
		errors = append(errors, ValidationError{
			Field:   "rag.max_context_length",
			Message: "max_context_length must be positive",
		})
	}

	if c.RAG.MetricsBoost < 0 {
		errors = append(errors, ValidationError{
			Field:   "rag.metrics_boost",
			Message: "metrics_boost must be non-negative",
		})
	}

	if c.RAG.SectionBoost < 0 {
		errors = append(errors, ValidationError{
			Field:   "rag.section_boost",
			Message: "section_boost must be non-negative",
		})
	}

	if c.RAG.KeywordBoost != nil && *c.RAG.KeywordBoost < 0 {
		errors = append(errors, ValidationError{
			Field:   "rag.keyword_boost",
			Message: "keyword_boost must be non-negative",
		})
	}

	// Validate Chunking config
	if c.Chunking.MaxChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "chunking.max_chunk_size",
			Message: "max_chunk_size must be positive",
		})
	}

	if c.Chunking.Overlap != nil {
		if overlap := *c.Chunking.Overlap; overlap < 0 || overlap >= c.Chunking.MaxChunkSize {
			errors = append(errors, ValidationError{
				Field:   "chunking.overlap",
				Message: "overlap must be non-negative and less than max_chunk_size",
			})
		}
	}

	// Validate Embedder config
	if c.Embedder.Dimension < 1 {
		errors = append(errors, ValidationError{
			Field:   "embedder.dimension",
			Message: "dimension must be positive",
		})
	}

	if c.Embedder.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "embedder.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.Embedder.MaxConcurrency < 1 {
		errors = append(errors, ValidationError{
			Field:   "embedder.max_concurrency",
			Message: "max_concurrency must be at least 1",
		})
	}

	switch c.Embedder.Provider {
	case "ollama", "hash", "":
	default:
		errors = append(errors, ValidationError{
			Field:   "embedder.provider",
			Message: fmt.Sprintf("unknown provider: %s", c.Embedder.Provider),
		})
	}

	if _, err := url.Parse(c.Embedder.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "embedder.base_url",
			Message: "invalid embedder base URL",
		})
	}

	return errors
}
