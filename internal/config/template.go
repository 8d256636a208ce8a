package config

// DefaultTemplateConfig 返回一个“可运行”的默认配置模板，覆盖每个可配置
// 选项的键，值取安全中性默认。
func DefaultTemplateConfig() Config {
	d := Defaults()
	v := true
	return Config{
		Dir:                  ".",
		OutputFilePath:       "prompt.md",
		FileTypeExclusions:   nil,
		FileExclusions:       nil,
		CustomPatterns:       nil,
		CustomSecretPatterns: nil,
		Verbose:              &v,
		TodoPrompt:           "",
		Concurrency:          d.Concurrency,
		MaxTokens:            d.MaxTokens,
		Tokenizer:            d.Tokenizer,
		Logging:              Logging{Level: "info"},
	}
}
