package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/xhad/resumerag/internal/models"
	"github.com/xhad/resumerag/internal/observe"
	"github.com/xhad/resumerag/internal/types"
	"github.com/xhad/resumerag/pkg/chunker"
	"github.com/xhad/resumerag/pkg/llm"
)

type VectorStoreConfig struct {
	Dimension      int
	MaxConcurrency int // bound on parallel provider calls

	// Re-rank boost factors. The multiplicative factors default when
	// zero (a zero factor would erase the score; disable with 1.0).
	// KeywordBoost is additive and zero disables it; the stock value
	// lives in config.applyDefaults.
	MetricsBoost float64 // applied when a chunk has quantifiable metrics
	SectionBoost float64 // applied when query intent matches section type
	KeywordBoost float64 // applied per matching keyword
}

// VectorStore holds chunks and embeddings in memory for one session and
// answers brute-force cosine similarity queries over them. Embeddings
// are cached by content hash; when the provider fails, a deterministic
// hash embedding of the same dimension keeps retrieval working.
type VectorStore struct {
	config   VectorStoreConfig
	embedder types.Embedder // may be nil: fallback-only operation
	fallback *llm.HashEmbedder
	obs      observe.Observer

	mu     sync.RWMutex
	chunks []models.DocumentChunk
	cache  map[string][]float32

	flight singleflight.Group
}

func NewWithConfig(config VectorStoreConfig, embedder types.Embedder, obs observe.Observer) *VectorStore {
	if config.Dimension == 0 {
		config.Dimension = 768
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.MetricsBoost == 0 {
		config.MetricsBoost = 1.10
	}
	if config.SectionBoost == 0 {
		config.SectionBoost = 1.15
	}
	if obs == nil {
		obs = observe.Nop()
	}

	return &VectorStore{
		config:   config,
		embedder: embedder,
		fallback: llm.NewHashEmbedder(config.Dimension),
		obs:      obs,
		cache:    make(map[string][]float32),
	}
}

// AddChunks embeds every chunk that lacks an embedding and stores the
// batch. Provider calls run with bounded concurrency; provider failures
// are absorbed via the fallback embedding and never surfaced.
func (s *VectorStore) AddChunks(ctx context.Context, chunks []models.DocumentChunk) error {
	pending := make([]models.DocumentChunk, len(chunks))
	copy(pending, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrency)

	for i := range pending {
		if len(pending[i].Embedding) == s.config.Dimension {
			continue
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vec, cached := s.embedText(gctx, pending[i].Content)
			pending[i].Embedding = vec
			s.obs.ChunkEmbedded(cached)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	s.chunks = append(s.chunks, pending...)
	s.mu.Unlock()
	return nil
}

// embedText returns the embedding for content, serving repeats from the
// content-hash cache. Concurrent misses for the same content coalesce
// onto one provider call, so identical chunks dispatched in parallel by
// AddChunks still embed exactly once. The second return reports whether
// the result came from the cache or a coalesced call.
func (s *VectorStore) embedText(ctx context.Context, content string) ([]float32, bool) {
	key := contentHash(content)

	s.mu.RLock()
	vec, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return vec, true
	}

	fresh := false
	v, _, _ := s.flight.Do(key, func() (interface{}, error) {
		s.mu.RLock()
		vec, ok := s.cache[key]
		s.mu.RUnlock()
		if ok {
			return vec, nil
		}
		fresh = true

		vec = s.embedFresh(ctx, content)
		s.mu.Lock()
		s.cache[key] = vec
		s.mu.Unlock()
		return vec, nil
	})
	return v.([]float32), !fresh
}

// embedFresh asks the provider for an embedding, degrading to the
// deterministic fallback when the provider is absent, failing, or
// returns the wrong dimension.
func (s *VectorStore) embedFresh(ctx context.Context, content string) []float32 {
	var vec []float32
	if s.embedder != nil {
		got, err := s.embedder.Embed(ctx, content)
		switch {
		case err != nil:
			s.obs.EmbeddingFallback(err.Error())
		case len(got) != s.config.Dimension:
			s.obs.EmbeddingFallback("provider dimension mismatch")
		default:
			vec = got
		}
	} else {
		s.obs.EmbeddingFallback("no embedding provider configured")
	}

	if vec == nil {
		vec, _ = s.fallback.Embed(ctx, content)
	}
	return vec
}

// Retrieve embeds the query and returns at most topK chunks whose cosine
// similarity meets the threshold, best first. Zero matches is an empty
// result, not an error.
func (s *VectorStore) Retrieve(ctx context.Context, query string, topK int, threshold float64) ([]models.RetrievalResult, error) {
	if topK <= 0 {
		topK = 5
	}

	qvec, _ := s.embedText(ctx, query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]models.RetrievalResult, 0, len(s.chunks))
	for _, ch := range s.chunks {
		score := cosineSimilarity(qvec, ch.Embedding)
		if score < threshold {
			continue
		}
		results = append(results, models.RetrievalResult{
			Chunk:      ch,
			Similarity: score,
			Score:      score,
			Relevance:  models.RelevanceFor(score),
		})
	}

	sortResults(results)
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Rerank folds deterministic heuristic signals into the similarity
// scores: quantified achievements, query section intent, and keyword
// overlap. Boosts always derive from the raw similarity, so reranking
// an already reranked list yields the same output, and the input's
// chunks are never mutated.
func (s *VectorStore) Rerank(results []models.RetrievalResult, query string) []models.RetrievalResult {
	out := make([]models.RetrievalResult, len(results))
	copy(out, results)

	queryTokens := make(map[string]struct{})
	for _, tok := range chunker.Tokens(query) {
		queryTokens[tok] = struct{}{}
	}
	intents := queryIntents(query)

	for i := range out {
		meta := out[i].Chunk.Metadata
		score := out[i].Similarity

		if meta.HasQuantifiableMetrics {
			score *= s.config.MetricsBoost
		}
		if _, ok := intents[meta.SectionType]; ok {
			score *= s.config.SectionBoost
		}

		matching := 0
		for _, kw := range meta.Keywords {
			if _, ok := queryTokens[kw]; ok {
				matching++
			}
		}
		score *= 1 + s.config.KeywordBoost*float64(matching)

		if score > 1.0 {
			score = 1.0
		}
		out[i].Score = score
		out[i].Relevance = models.RelevanceFor(score)
	}

	sortResults(out)
	return out
}

func (s *VectorStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Clear drops all stored chunks and the embedding cache.
func (s *VectorStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	s.cache = make(map[string][]float32)
}

// sortResults orders by descending score with ascending chunk position
// breaking ties, keeping repeated calls deterministic.
func sortResults(results []models.RetrievalResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Index < results[j].Chunk.Index
	})
}

// queryIntents maps section keywords in the query text to the section
// types they signal.
func queryIntents(query string) map[models.SectionType]struct{} {
	lower := strings.ToLower(query)
	intents := make(map[models.SectionType]struct{})
	if strings.Contains(lower, "skill") {
		intents[models.SectionSkills] = struct{}{}
	}
	if strings.Contains(lower, "experience") {
		intents[models.SectionExperience] = struct{}{}
	}
	if strings.Contains(lower, "education") {
		intents[models.SectionEducation] = struct{}{}
	}
	return intents
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
