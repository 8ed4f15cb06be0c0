package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/xhad/resumerag/internal/models"
	"github.com/xhad/resumerag/internal/observe"
	"github.com/xhad/resumerag/internal/types"
	"github.com/xhad/resumerag/pkg/chunker"
)

type ServiceConfig struct {
	TopK                int
	SimilarityThreshold float64
	MaxContextLength    int // character budget for assembled context text
	Reranking           bool
	Chunking            chunker.ChunkerConfig
}

// Stats is the snapshot reported by a service instance.
type Stats struct {
	SessionID     string        `json:"session_id"`
	IsInitialized bool          `json:"is_initialized"`
	ChunksStored  int           `json:"chunks_stored"`
	Config        ServiceConfig `json:"config"`
}

// Service orchestrates the chunker and the vector store into
// citation-traceable retrieval. One Service serves one resume-analysis
// session; concurrent sessions each get their own instance.
type Service struct {
	id      string
	config  ServiceConfig
	chunker types.Chunker
	store   types.VectorStore
	obs     observe.Observer

	mu          sync.Mutex
	initialized bool
}

func NewService(config ServiceConfig, store types.VectorStore, obs observe.Observer) *Service {
	if config.TopK == 0 {
		config.TopK = 5
	}
	if config.SimilarityThreshold == 0 {
		config.SimilarityThreshold = 0.65
	}
	if config.MaxContextLength == 0 {
		config.MaxContextLength = 4000
	}
	if obs == nil {
		obs = observe.Nop()
	}

	return &Service{
		id:      uuid.NewString(),
		config:  config,
		chunker: chunker.NewWithConfig(config.Chunking),
		store:   store,
		obs:     obs,
	}
}

// Initialize chunks the resume text and loads the vector store. It is
// the only fatal entry point: input that yields zero chunks surfaces an
// InitializationError.
func (s *Service) Initialize(ctx context.Context, text string) error {
	chunks := s.chunker.Chunk(text)
	if len(chunks) == 0 {
		return &InitializationError{Reason: "input text produced no chunks"}
	}

	if err := s.store.AddChunks(ctx, chunks); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}
	s.obs.ChunksCreated(len(chunks))

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
	return nil
}

// RetrieveContext answers one query with ranked chunks, assembled
// context text, and citations parallel to the [citation_k] markers.
// Retrieval failures are absorbed into an empty, well-formed context so
// the caller's wider analysis can proceed degraded.
func (s *Service) RetrieveContext(ctx context.Context, query string) (models.RAGContext, error) {
	if !s.IsReady() {
		return models.RAGContext{}, ErrNotInitialized
	}

	start := time.Now()
	results, err := s.store.Retrieve(ctx, query, s.config.TopK, s.config.SimilarityThreshold)
	if err != nil {
		s.obs.RetrievalFailed(query, err.Error())
		return emptyContext(query), nil
	}
	if s.config.Reranking {
		results = s.store.Rerank(results, query)
	}

	out := s.buildContext(query, results)
	s.obs.RetrievalDone(query, len(out.Chunks), time.Since(start))
	return out, nil
}

// RetrieveMultiQueryContext merges the retrievals of several queries
// without double counting: each chunk keeps the best score it earned
// across all queries, and the merged set is re-ranked and truncated to
// TopK before context assembly.
func (s *Service) RetrieveMultiQueryContext(ctx context.Context, queries []string) (models.RAGContext, error) {
	if !s.IsReady() {
		return models.RAGContext{}, ErrNotInitialized
	}

	merged := make(map[string]models.RetrievalResult)
	for _, q := range queries {
		rc, err := s.RetrieveContext(ctx, q)
		if err != nil {
			return models.RAGContext{}, err
		}
		for _, r := range rc.Chunks {
			if prev, ok := merged[r.Chunk.ID]; !ok || r.Score > prev.Score {
				merged[r.Chunk.ID] = r
			}
		}
	}

	results := make([]models.RetrievalResult, 0, len(merged))
	for _, r := range merged {
		results = append(results, r)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Index < results[j].Chunk.Index
	})
	if len(results) > s.config.TopK {
		results = results[:s.config.TopK]
	}

	return s.buildContext(strings.Join(queries, " | "), results), nil
}

// AugmentPrompt wraps a base prompt with the retrieved context and the
// grounding instruction. An empty context returns the prompt unchanged.
func (s *Service) AugmentPrompt(basePrompt string, rc models.RAGContext) string {
	if len(rc.Chunks) == 0 {
		return basePrompt
	}
	return fmt.Sprintf(
		"%s\n\nBase every statement on the cited resume content below. Do not introduce claims that cannot be traced to a [citation_N] marker.\n\n%s",
		basePrompt, rc.ContextText)
}

func (s *Service) IsReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *Service) Stats() Stats {
	return Stats{
		SessionID:     s.id,
		IsInitialized: s.IsReady(),
		ChunksStored:  s.store.Size(),
		Config:        s.config,
	}
}

// Dispose clears the vector store and releases tokenizer state. Any
// retrieval after Dispose fails with ErrNotInitialized.
func (s *Service) Dispose() {
	s.mu.Lock()
	s.initialized = false
	s.mu.Unlock()

	s.store.Clear()
	s.chunker.Release()
	s.obs.SessionDisposed()
}

const blockSeparator = "\n\n"

// citationSnippetLen bounds how much chunk content a citation repeats.
const citationSnippetLen = 200

// buildContext assembles rank-ordered "[citation_k] content" blocks up
// to the character budget. The first block is always included, even when
// it alone exceeds the budget, so a context with matches is never empty.
func (s *Service) buildContext(query string, results []models.RetrievalResult) models.RAGContext {
	var blocks []string
	var citations []models.Citation
	var kept []models.RetrievalResult
	total := 0

	for _, r := range results {
		id := fmt.Sprintf("citation_%d", len(kept)+1)
		block := fmt.Sprintf("[%s] %s", id, r.Chunk.Content)

		addition := len(block)
		if len(blocks) > 0 {
			addition += len(blockSeparator)
		}
		if len(blocks) > 0 && total+addition > s.config.MaxContextLength {
			break
		}

		blocks = append(blocks, block)
		total += addition
		kept = append(kept, r)
		citations = append(citations, models.Citation{
			ID:         id,
			Content:    snippet(r.Chunk.Content),
			Section:    sectionLabel(r.Chunk.Metadata),
			Score:      r.Score,
			StartIndex: r.Chunk.Metadata.StartIndex,
			EndIndex:   r.Chunk.Metadata.EndIndex,
		})
	}

	return models.RAGContext{
		Query:       query,
		Chunks:      kept,
		ContextText: strings.Join(blocks, blockSeparator),
		Citations:   citations,
	}
}

func emptyContext(query string) models.RAGContext {
	return models.RAGContext{Query: query}
}

func snippet(content string) string {
	if len(content) <= citationSnippetLen {
		return content
	}
	// Back up to a rune boundary so truncation never splits a
	// multi-byte character.
	cut := citationSnippetLen
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "..."
}

func sectionLabel(meta models.ChunkMetadata) string {
	if meta.SectionTitle != "" {
		return meta.SectionTitle
	}
	return string(meta.SectionType)
}
