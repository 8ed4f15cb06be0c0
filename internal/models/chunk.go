package models

// SectionType classifies which part of a resume a chunk was cut from.
type SectionType string

const (
	SectionHeader         SectionType = "header"
	SectionSummary        SectionType = "summary"
	SectionExperience     SectionType = "experience"
	SectionEducation      SectionType = "education"
	SectionSkills         SectionType = "skills"
	SectionProjects       SectionType = "projects"
	SectionCertifications SectionType = "certifications"
	SectionAwards         SectionType = "awards"
	SectionOther          SectionType = "other"
)

// ChunkMetadata carries the heuristic signals derived for a chunk.
// StartIndex/EndIndex are character offsets into the untouched source
// text, so citations can always be traced back to the original.
type ChunkMetadata struct {
	SectionType            SectionType `json:"section_type"`
	SectionTitle           string      `json:"section_title,omitempty"`
	StartIndex             int         `json:"start_index"`
	EndIndex               int         `json:"end_index"`
	BulletPoint            bool        `json:"bullet_point"`
	HasQuantifiableMetrics bool        `json:"has_quantifiable_metrics"`
	Keywords               []string    `json:"keywords,omitempty"`
}

// DocumentChunk is one retrieval unit. ID is stable for the lifetime of
// a session; Index orders chunks by position in the source document and
// is used for deterministic tie-breaking.
type DocumentChunk struct {
	ID        string        `json:"id"`
	Index     int           `json:"index"`
	Content   string        `json:"content"`
	Metadata  ChunkMetadata `json:"metadata"`
	Embedding []float32     `json:"embedding,omitempty"`
}
