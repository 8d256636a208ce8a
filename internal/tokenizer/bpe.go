package tokenizer

import (
	"fmt"
	"os"

	"github.com/pkoukk/tiktoken-go"

	"toak/pkg/contract"
)

// EncodingLlama3 names the BPE vocabulary token counts are reported
// under. tiktoken-go does not ship a llama3 preset by name, so BPE uses the
// cl100k_base merge table, the closest publicly vendored vocabulary, and
// only ever loads it from a local cache (see New below).
const EncodingLlama3 = "cl100k_base"

// BPE counts tokens under a tiktoken-go BPE vocabulary. Unlike Words it
// carries a real merge table and is opt-in, because loading one requires
// a populated on-disk cache: the core's no-network-I/O non-goal means BPE
// must fail fast rather than reach out to fetch vocab files at runtime.
type BPE struct {
	enc *tiktoken.Tiktoken
}

var _ contract.Tokenizer = (*BPE)(nil)

// NewBPE constructs a BPE tokenizer for EncodingLlama3. It requires
// TIKTOKEN_CACHE_DIR to already point at a directory containing the
// vocabulary's cached BPE file; tiktoken-go keys cache entries by a hash
// of the vocabulary's download URL, so the cache must have been
// pre-populated out of band. Without that variable set, construction
// fails rather than silently falling back to a network fetch.
func NewBPE() (*BPE, error) {
	if os.Getenv("TIKTOKEN_CACHE_DIR") == "" {
		return nil, fmt.Errorf("tokenizer: BPE requires TIKTOKEN_CACHE_DIR to point at a pre-populated vocabulary cache (no network I/O is performed)")
	}
	enc, err := tiktoken.GetEncoding(EncodingLlama3)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: load %s: %w", EncodingLlama3, err)
	}
	return &BPE{enc: enc}, nil
}

// EncodeLen returns the number of BPE tokens text encodes to. Both the
// allowed and the disallowed special-token lists are empty: no special
// token is allowed, so an embedded literal like "<|endoftext|>" is not
// treated as a control token, and none is disallowed, so it is not
// rejected either.
func (b *BPE) EncodeLen(text string) int {
	return len(b.enc.Encode(text, nil, nil))
}
