package llm

import (
	"fmt"

	"github.com/xhad/resumerag/internal/types"
)

// NewProvider selects an embedding capability by name. "ollama" is the
// remote provider; "hash" forces the deterministic local embedding.
func NewProvider(provider string, config EmbedderConfig) (types.Embedder, error) {
	switch provider {
	case "", "ollama":
		return NewEmbedderWithConfig(config)
	case "hash":
		return NewHashEmbedder(config.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", provider)
	}
}
