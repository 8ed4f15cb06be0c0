package llm_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/resumerag/pkg/llm"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	emb := llm.NewHashEmbedder(128)
	ctx := context.Background()

	a, err := emb.Embed(ctx, "led a team of five engineers")
	require.NoError(t, err)
	b, err := emb.Embed(ctx, "led a team of five engineers")
	require.NoError(t, err)

	assert.Equal(t, a, b, "identical text must embed identically")
}

func TestHashEmbedder_Dimension(t *testing.T) {
	emb := llm.NewHashEmbedder(64)
	assert.Equal(t, 64, emb.Dimension())

	vec, err := emb.Embed(context.Background(), "some resume content")
	require.NoError(t, err)
	assert.Len(t, vec, 64)
}

func TestHashEmbedder_Normalized(t *testing.T) {
	emb := llm.NewHashEmbedder(128)

	vec, err := emb.Embed(context.Background(), "python go rust kubernetes")
	require.NoError(t, err)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
}

func TestHashEmbedder_RelatedTextScoresHigher(t *testing.T) {
	emb := llm.NewHashEmbedder(256)
	ctx := context.Background()

	query, _ := emb.Embed(ctx, "python and go experience")
	related, _ := emb.Embed(ctx, "five years of python and go experience")
	unrelated, _ := emb.Embed(ctx, "volunteer firefighter certification")

	assert.Greater(t, cosine(query, related), cosine(query, unrelated))
}

func TestNewProvider(t *testing.T) {
	hash, err := llm.NewProvider("hash", llm.EmbedderConfig{Dimension: 32})
	require.NoError(t, err)
	assert.Equal(t, 32, hash.Dimension())

	// Constructing the ollama client does not dial the server.
	remote, err := llm.NewProvider("ollama", llm.EmbedderConfig{
		Model:     "nomic-embed-text:latest",
		BaseURL:   "http://localhost:11434",
		Dimension: 768,
	})
	require.NoError(t, err)
	assert.Equal(t, 768, remote.Dimension())

	_, err = llm.NewProvider("carrier-pigeon", llm.EmbedderConfig{})
	assert.Error(t, err)
}

func cosine(a, b []float32) float64 {
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
