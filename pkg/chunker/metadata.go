package chunker

import (
	"regexp"
	"sort"
	"strings"
)

const maxKeywords = 10

var (
	bulletPattern = regexp.MustCompile(`^\s*([-*•●◦▪‣]|\d+[.)])\s+`)

	// Numbers qualify as quantifiable only when paired with a unit:
	// percentages, currency, magnitude words, or multipliers.
	metricsPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?\s*%|[$€£]\s*\d[\d,.]*[kmb]?|\d[\d,.]*\s*(?:million|billion|thousand|k\b)|\d+(?:\.\d+)?x\b)`)

	wordPattern = regexp.MustCompile(`[\p{L}\d][\p{L}\d+#.-]*`)
)

func hasBullet(content string) bool {
	return bulletPattern.MatchString(content)
}

func hasQuantifiableMetrics(content string) bool {
	return metricsPattern.MatchString(content)
}

// extractKeywords returns the most frequent non-stopword tokens in the
// content, most frequent first. Ties keep first-occurrence order so the
// result is deterministic.
func extractKeywords(content string) []string {
	tokens := wordPattern.FindAllString(strings.ToLower(content), -1)

	freq := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, tok := range tokens {
		if len(tok) < 3 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if _, ok := firstSeen[tok]; !ok {
			firstSeen[tok] = i
		}
		freq[tok]++
	}

	unique := make([]string, 0, len(freq))
	for tok := range freq {
		unique = append(unique, tok)
	}
	sort.Slice(unique, func(i, j int) bool {
		if freq[unique[i]] != freq[unique[j]] {
			return freq[unique[i]] > freq[unique[j]]
		}
		return firstSeen[unique[i]] < firstSeen[unique[j]]
	})

	if len(unique) > maxKeywords {
		unique = unique[:maxKeywords]
	}
	return unique
}

// Common English stopwords, extended from the teacher's processor list.
var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "been", "being", "but",
		"by", "for", "from", "had", "has", "have", "he", "her", "his", "if",
		"in", "into", "is", "it", "its", "of", "on", "or", "our", "she",
		"so", "than", "that", "the", "their", "them", "then", "these",
		"they", "this", "those", "to", "was", "were", "which", "will",
		"with", "would", "you", "your", "about", "after", "all", "also",
		"can", "more", "most", "not", "other", "over", "some", "such",
		"through", "using", "very", "when", "where", "while",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// IsStopword reports whether the lower-cased token is filtered from
// keyword and query-term extraction.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// Tokens returns the lower-cased word tokens of text, in order.
func Tokens(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}
