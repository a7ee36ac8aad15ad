package token

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tiktoken encoding used when none is configured.
const DefaultEncoding = "cl100k_base"

// Estimator maps text to an approximate token count. The pipeline must stay
// correct with only the approximate implementation; exactness is an
// optimization, never a correctness dependency.
type Estimator interface {
	Count(text string) int
}

// Approximate estimates tokens as one per four characters, never less than
// one. Characters, not bytes: multibyte text must not inflate the estimate.
// Always available.
type Approximate struct{}

func (Approximate) Count(text string) int {
	n := utf8.RuneCountInString(text) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// Tiktoken counts tokens exactly using a tiktoken encoding.
type Tiktoken struct {
	tke *tiktoken.Tiktoken
}

// NewTiktoken builds an exact estimator for the given encoding name.
// Loading an encoding can fail (e.g. offline environments that cannot fetch
// the BPE file); callers should fall back to Approximate on error.
func NewTiktoken(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("get encoding %q: %w", encoding, err)
	}
	return &Tiktoken{tke: tke}, nil
}

func (t *Tiktoken) Count(text string) int {
	return len(t.tke.Encode(text, nil, nil))
}
