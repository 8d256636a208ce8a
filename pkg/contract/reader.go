package contract

import "context"

// Reader loads one admitted file's bytes relative to root and decodes them
// as UTF-8 text.
// 约束：
// 1) 单文件维度调用，不在内部遍历目录；
// 2) 空或仅空白内容的文件返回零值 FileRecord.Text，不视为错误；
// 3) 不做清理/脱敏，仅提供解码后的文本。
type Reader interface {
	Read(ctx context.Context, root string, p Path) (FileRecord, error)
}

// Enumerator lists the paths a version-control collaborator reports as
// tracked under root, sorted lexicographically.
// 约束：
// 1) 从不抛出：协作者不可用或目录非仓库时返回空序列而非错误；
// 2) 返回的 Path 已做跨平台规范化。
type Enumerator interface {
	Enumerate(ctx context.Context, root string) ([]Path, error)
}

// Admit decides whether a path survives the exclusion pipeline.
type Admit func(p Path) bool

// Cleaner applies the fixed ordered set of idempotent textual transforms to
// one file's decoded text, followed by any caller-supplied custom patterns.
type Cleaner interface {
	Clean(text string) string
}

// Redactor applies the fixed ordered set of secret-matching patterns to
// cleaned text, followed by custom patterns. The line filter that drops
// lines containing a sentinel is not part of Redact; the pipeline runs it
// as a separate step.
type Redactor interface {
	Redact(text string) string
}

// Tokenizer is an injectable, pure capability: a length-only projection of
// text under some vocabulary. It never mutates text and carries no other
// state visible to callers.
type Tokenizer interface {
	EncodeLen(text string) int
}

// Chunker partitions an assembled Document into token-bounded FileChunks.
type Chunker interface {
	Split(doc Document, maxTokens int) ([]FileChunk, error)
}
