// Package tokenizer provides the pluggable length-only tokenizer
// capability the Chunker depends on: a pure function from text to a token
// count, injected rather than hard-coded so tests can substitute a
// deterministic stub without coupling to BPE merge behavior.
package tokenizer

import (
	"strings"

	"toak/pkg/contract"
)

// Words counts whitespace-separated tokens. It is the default: cheap,
// dependency free, and a reasonable proxy for BPE token counts on source
// text.
type Words struct{}

var _ contract.Tokenizer = Words{}

// EncodeLen returns the number of whitespace-delimited fields in text.
func (Words) EncodeLen(text string) int {
	return len(strings.Fields(text))
}

// New returns the default Words tokenizer.
func New() Words { return Words{} }
