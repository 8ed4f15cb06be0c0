package llm

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\d][\p{L}\d+#.-]*`)

// HashEmbedder derives a same-dimension vector from token and character
// trigram hashing. It never fails, so retrieval degrades instead of
// breaking when the real provider is unavailable. Identical text always
// maps to an identical vector.
type HashEmbedder struct {
	dimension int
}

func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = 768
	}
	return &HashEmbedder{dimension: dimension}
}

func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)

	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		vec[bucket(tok, e.dimension)] += 1.0

		// Character trigrams give partial credit to related word forms.
		runes := []rune(tok)
		for i := 0; i+3 <= len(runes); i++ {
			vec[bucket(string(runes[i:i+3]), e.dimension)] += 0.5
		}
	}

	normalize(vec)
	return vec, nil
}

func (e *HashEmbedder) Dimension() int {
	return e.dimension
}

func bucket(s string, dim int) int {
	h := fnv.New32a()
	h.Write([]byte(s))
	return int(h.Sum32() % uint32(dim))
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
