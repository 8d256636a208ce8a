package config

import (
	"errors"
	"fmt"
	"strings"

	"toak/internal/assemble"
	"toak/internal/chunk"
	"toak/internal/clean"
	"toak/internal/exclude"
	"toak/internal/ioread"
	"toak/internal/pipeline"
	"toak/internal/redact"
	"toak/internal/vcs"
	"toak/pkg/registry"
)

// Validate 对最小必要边界做静态校验。
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Dir) == "" {
		return errors.New("config: dir empty")
	}
	if cfg.Concurrency < 1 {
		return errors.New("config: concurrency must be >= 1")
	}
	if cfg.MaxTokens <= 0 {
		return errors.New("config: max_tokens must be > 0")
	}
	name := cfg.Tokenizer
	if name == "" {
		name = Defaults().Tokenizer
	}
	if registry.Tokenizer[name] == nil {
		return fmt.Errorf("config: tokenizer %q not registered", name)
	}
	return nil
}

// Assemble 构造流水线 Components 与 Settings。严格 Options 解析在注册表
// （工厂）层进行；此处只传 raw JSON。
func Assemble(cfg Config) (pipeline.Components, pipeline.Settings, error) {
	if err := Validate(cfg); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}

	tokName := cfg.Tokenizer
	if tokName == "" {
		tokName = Defaults().Tokenizer
	}
	tok, err := registry.Tokenizer[tokName](cfg.TokenizerOptions)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}

	admit, err := exclude.Build(cfg.Dir, exclude.Options{
		FileTypeExclusions: cfg.FileTypeExclusions,
		FileExclusions:     cfg.FileExclusions,
	})
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}

	cleaner, err := clean.New(toCleanPatterns(cfg.CustomPatterns))
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}
	redactor, err := redact.New(toRedactPatterns(cfg.CustomSecretPatterns))
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}

	comp := pipeline.Components{
		Enumerator: vcs.Git{},
		Admit:      admit,
		Reader:     &ioread.Reader{},
		Cleaner:    cleaner,
		Redactor:   redactor,
		Assembler:  assemble.New(),
		Chunker:    chunk.New(tok),
		Tokenizer:  tok,
	}

	set := pipeline.Settings{
		Root:        cfg.Dir,
		Concurrency: cfg.Concurrency,
		MaxTokens:   cfg.MaxTokens,
		Appendix:    cfg.TodoPrompt,
	}

	return comp, set, nil
}

func toCleanPatterns(in []Pattern) []clean.Pattern {
	if len(in) == 0 {
		return nil
	}
	out := make([]clean.Pattern, len(in))
	for i, p := range in {
		out[i] = clean.Pattern{Pattern: p.Pattern, Replacement: p.Replacement}
	}
	return out
}

func toRedactPatterns(in []Pattern) []redact.Pattern {
	if len(in) == 0 {
		return nil
	}
	out := make([]redact.Pattern, len(in))
	for i, p := range in {
		out[i] = redact.Pattern{Pattern: p.Pattern, Replacement: p.Replacement}
	}
	return out
}
