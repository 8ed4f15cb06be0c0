package models

// Relevance buckets a similarity score into a coarse tier.
type Relevance string

const (
	RelevanceHigh   Relevance = "high"
	RelevanceMedium Relevance = "medium"
	RelevanceLow    Relevance = "low"
)

// RelevanceFor maps a score to its tier.
func RelevanceFor(score float64) Relevance {
	switch {
	case score >= 0.85:
		return RelevanceHigh
	case score >= 0.70:
		return RelevanceMedium
	default:
		return RelevanceLow
	}
}

// RetrievalResult pairs a chunk with its scores. Similarity is the raw
// cosine value from retrieval and never changes afterwards; Score starts
// equal to Similarity and is the value re-ranking adjusts.
type RetrievalResult struct {
	Chunk      DocumentChunk `json:"chunk"`
	Similarity float64       `json:"similarity"`
	Score      float64       `json:"score"`
	Relevance  Relevance     `json:"relevance"`
}

// Citation points a context snippet back to its source chunk and the
// offsets of that chunk in the original text.
type Citation struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Section    string  `json:"section"`
	Score      float64 `json:"score"`
	StartIndex int     `json:"start_index"`
	EndIndex   int     `json:"end_index"`
}

// RAGContext is the assembled, citation-traceable retrieval output
// handed to callers (analysis, job matching, cover letters).
type RAGContext struct {
	Query       string            `json:"query"`
	Chunks      []RetrievalResult `json:"chunks"`
	ContextText string            `json:"context_text"`
	Citations   []Citation        `json:"citations"`
}
