package chunker

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter measures text in tokens so chunk budgets stay
// language-robust instead of tracking raw character counts.
type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (t *tiktokenCounter) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

type wordCounter struct{}

func (wordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// newTokenCounter prefers the cl100k_base BPE encoding. When the
// encoding cannot be loaded (no cache, no network) it degrades to
// whitespace word counting rather than failing chunking outright.
func newTokenCounter() TokenCounter {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return wordCounter{}
	}
	return &tiktokenCounter{enc: enc}
}
