package types

import (
	"context"

	"github.com/xhad/resumerag/internal/models"
)

// Chunker splits raw resume text into offset-tagged retrieval units.
// Release frees any tokenizer state a disposed session no longer needs.
type Chunker interface {
	Chunk(text string) []models.DocumentChunk
	Release()
}

// Embedder converts text into a fixed-dimension vector. Implementations
// backed by a remote provider may fail; callers are expected to degrade
// to a deterministic fallback rather than surface the error.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// VectorStore holds chunks plus embeddings and answers similarity
// queries over them.
type VectorStore interface {
	AddChunks(ctx context.Context, chunks []models.DocumentChunk) error
	Retrieve(ctx context.Context, query string, topK int, threshold float64) ([]models.RetrievalResult, error)
	Rerank(results []models.RetrievalResult, query string) []models.RetrievalResult
	Size() int
	Clear()
}
