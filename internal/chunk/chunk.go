// Package chunk implements the Chunker stage: it partitions an assembled
// Document into token-bounded FileChunk records, one or more per Section,
// using a greedy line-accumulation algorithm whose budget math is exact
// under the injected Tokenizer.
package chunk

import (
	"strings"

	"toak/internal/assemble"
	"toak/pkg/contract"
)

// Chunker splits Sections into FileChunks bounded by a token budget. It
// holds nothing but the Tokenizer capability it was built with.
type Chunker struct {
	tok contract.Tokenizer
}

var _ contract.Chunker = Chunker{}

// New builds a Chunker over the given Tokenizer.
func New(tok contract.Tokenizer) Chunker {
	return Chunker{tok: tok}
}

// Split implements contract.Chunker. Chunks for a given file are
// contiguous and appear in increasing ChunkIndex order; ChunkCount is
// filled in once every chunk for that file is known.
func (c Chunker) Split(doc contract.Document, maxTokens int) ([]contract.FileChunk, error) {
	var out []contract.FileChunk
	for _, sec := range doc.Sections {
		chunks := c.splitSection(sec, maxTokens)
		out = append(out, chunks...)
	}
	return out, nil
}

func (c Chunker) splitSection(sec contract.Section, maxTokens int) []contract.FileChunk {
	header := assemble.Header(sec.Path)
	footer := assemble.Footer()
	h := c.tok.EncodeLen(header)
	f := c.tok.EncodeLen(footer)

	if h+f >= maxTokens {
		content := header + sec.Body + footer
		return []contract.FileChunk{{
			FileName: sec.Path,
			Content:  content,
			Meta: contract.ChunkMeta{
				Tokens:     c.tok.EncodeLen(content),
				ChunkIndex: 0,
				ChunkCount: 1,
				Overflow:   true,
			},
		}}
	}

	contentBudget := maxTokens - h - f
	lines := strings.Split(sec.Body, "\n")

	var chunks []contract.FileChunk
	var buf []string
	overflow := make(map[int]bool)

	flush := func() {
		if len(buf) == 0 {
			return
		}
		body := strings.Join(buf, "\n")
		content := header + body + footer
		chunks = append(chunks, contract.FileChunk{
			FileName: sec.Path,
			Content:  content,
			Meta: contract.ChunkMeta{
				Tokens:     c.tok.EncodeLen(content),
				ChunkIndex: len(chunks),
			},
		})
		buf = buf[:0]
	}

	for _, line := range lines {
		candidate := line
		if len(buf) > 0 {
			candidate = strings.Join(append(append([]string{}, buf...), line), "\n")
		}
		if c.tok.EncodeLen(candidate) <= contentBudget {
			buf = append(buf, line)
			continue
		}
		// The buffered lines no longer fit alongside this one: flush what
		// we have and start fresh with this line.
		flush()
		if c.tok.EncodeLen(line) > contentBudget {
			// A single line that alone exceeds the budget is emitted as
			// its own overflow chunk rather than silently dropped.
			overflow[len(chunks)] = true
			buf = append(buf, line)
			flush()
			continue
		}
		buf = append(buf, line)
	}
	flush()

	if len(chunks) == 0 {
		// Body was empty; still emit the bare framing as one chunk so the
		// file is represented in the chunk stream.
		content := header + footer
		chunks = append(chunks, contract.FileChunk{
			FileName: sec.Path,
			Content:  content,
			Meta:     contract.ChunkMeta{Tokens: c.tok.EncodeLen(content), ChunkIndex: 0},
		})
	}

	for i := range chunks {
		chunks[i].Meta.ChunkCount = len(chunks)
		if overflow[i] {
			chunks[i].Meta.Overflow = true
		}
	}
	return chunks
}
