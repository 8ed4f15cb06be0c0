package rag

import (
	"sort"
	"strings"

	"github.com/xhad/resumerag/pkg/chunker"
)

// baseQueries cover the evidence every critique needs regardless of the
// requested analysis angle.
var baseQueries = []string{
	"professional experience and accomplishments",
	"technical skills and competencies",
	"education and qualifications",
	"quantifiable achievements and impact",
}

// GenerateQueries returns the retrieval queries for an analysis run:
// the fixed base set, an optional emphasis query for the analysis type,
// and, when a job description is given, one query built from its most
// frequent terms.
func (s *Service) GenerateQueries(analysisType, jobDescription string) []string {
	queries := append([]string(nil), baseQueries...)

	switch strings.ToLower(analysisType) {
	case "skills":
		queries = append(queries, "proficiency with tools and technologies")
	case "experience":
		queries = append(queries, "career progression and responsibilities")
	case "achievements":
		queries = append(queries, "awards honors and recognition")
	}

	if jobDescription != "" {
		if terms := topTerms(jobDescription, 8); len(terms) > 0 {
			queries = append(queries, strings.Join(terms, " "))
		}
	}
	return queries
}

// topTerms extracts the most frequent non-stopword tokens of text,
// breaking frequency ties by first occurrence.
func topTerms(text string, limit int) []string {
	freq := make(map[string]int)
	firstSeen := make(map[string]int)

	for i, tok := range chunker.Tokens(text) {
		if len(tok) < 3 || chunker.IsStopword(tok) {
			continue
		}
		if _, ok := firstSeen[tok]; !ok {
			firstSeen[tok] = i
		}
		freq[tok]++
	}

	terms := make([]string, 0, len(freq))
	for tok := range freq {
		terms = append(terms, tok)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return firstSeen[terms[i]] < firstSeen[terms[j]]
	})

	if len(terms) > limit {
		terms = terms[:limit]
	}
	return terms
}
