// Package ioread implements the Reader stage: UTF-8-safe decoding of one
// admitted file at a time.
package ioread

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"toak/pkg/contract"
)

// ImageDecoder is an optional extension point for binary content that needs
// out-of-band decoding (e.g. OCR) before it can be treated as text. No
// implementation ships by default; without one, Reader decodes bytes that
// are not valid UTF-8 with replacement characters and never returns
// ErrUnsupported.
type ImageDecoder interface {
	Decode(ext string, raw []byte) (string, error)
}

// Reader reads one file's bytes from disk relative to root, normalizes
// line endings, and decodes as UTF-8 with replacement. An empty or
// whitespace-only file short-circuits to a FileRecord with no Text, which
// the Assembler later omits entirely rather than treating as an error.
type Reader struct {
	// Image, when set, is consulted (with the file's extension) for any
	// file whose bytes are not valid UTF-8.
	Image ImageDecoder
}

var _ contract.Reader = (*Reader)(nil)

func (r *Reader) Read(ctx context.Context, root string, p contract.Path) (contract.FileRecord, error) {
	select {
	case <-ctx.Done():
		return contract.FileRecord{}, ctx.Err()
	default:
	}

	full := filepath.Join(root, filepath.FromSlash(string(p)))
	raw, err := os.ReadFile(full)
	if err != nil {
		return contract.FileRecord{}, err
	}

	text := raw
	var decoded string
	if utf8.Valid(text) {
		decoded = string(text)
	} else if r.Image != nil {
		ext := strings.TrimPrefix(filepath.Ext(full), ".")
		decoded, err = r.Image.Decode(ext, raw)
		if err != nil {
			return contract.FileRecord{}, err
		}
	} else {
		decoded = strings.ToValidUTF8(string(text), "�")
	}

	decoded = strings.ReplaceAll(decoded, "\r\n", "\n")
	if strings.TrimSpace(decoded) == "" {
		return contract.FileRecord{Path: p}, nil
	}
	return contract.FileRecord{Path: p, Raw: raw, Text: decoded}, nil
}
