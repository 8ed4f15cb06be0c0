package chunker

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Built white-box so the token counter can be pinned to word counting,
// keeping the expected chunk arithmetic independent of the BPE cache.
func TestPackSentences_ChunkCountNearBudgetRatio(t *testing.T) {
	const (
		maxChunkSize     = 40
		overlap          = 8
		sentences        = 60
		wordsPerSentence = 8
	)

	var b strings.Builder
	b.WriteString("EXPERIENCE\n")
	for i := 0; i < sentences; i++ {
		for w := 0; w < wordsPerSentence-1; w++ {
			fmt.Fprintf(&b, "word%d%d ", i, w)
		}
		fmt.Fprintf(&b, "word%d. ", i)
	}

	c := NewWithConfig(ChunkerConfig{
		MaxChunkSize:      maxChunkSize,
		Overlap:           overlap,
		RespectBoundaries: true,
	})
	c.counter = wordCounter{}

	chunks := c.Chunk(b.String())
	require.NotEmpty(t, chunks)

	totalTokens := sentences * wordsPerSentence
	expected := int(math.Ceil(float64(totalTokens) / float64(maxChunkSize-overlap)))

	assert.InDelta(t, expected, len(chunks), 1,
		"chunk count should be ceil(tokens/(max-overlap)) within sentence-snapping tolerance")

	for _, ch := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(ch.Content))
		assert.Greater(t, ch.Metadata.EndIndex, ch.Metadata.StartIndex)
	}
}

func TestPackUnits_AdjacentChunksShareOverlap(t *testing.T) {
	c := NewWithConfig(ChunkerConfig{
		MaxChunkSize:      10,
		Overlap:           4,
		RespectBoundaries: true,
	})
	c.counter = wordCounter{}

	text := "EXPERIENCE\nalpha beta gamma delta. epsilon zeta eta theta. iota kappa lambda mu. nu xi omicron pi."
	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)

	// The carried sentence makes each chunk start with the previous
	// chunk's final sentence.
	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1].Content)
		assert.True(t,
			strings.HasPrefix(chunks[i].Content, prevWords[len(prevWords)-4]),
			"chunk %d should begin with the previous chunk's last sentence", i)
	}
}

func TestTrimRange(t *testing.T) {
	text := "  hello world \n"
	content, start, end := trimRange(text, 0, len(text))
	assert.Equal(t, "hello world", content)
	assert.Equal(t, 2, start)
	assert.Equal(t, 13, end)
}
