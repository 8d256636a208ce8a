package config

import "encoding/json"

// Config: 运行期只读配置（一次解析，运行期不变）。
// JSON 使用 camelCase，镜像外部配置选项表；未知顶层键记为警告并忽略，
// 而非解析失败。
type Config struct {
	// Dir 是仓库根目录；默认当前目录。
	Dir string `json:"dir"`
	// OutputFilePath 是调用方落盘 Document 的目标路径；默认 prompt.md。
	OutputFilePath string `json:"outputFilePath"`

	// FileTypeExclusions 追加到第 1 层扩展名排除集合。
	FileTypeExclusions []string `json:"fileTypeExclusions"`
	// FileExclusions 追加到第 2 层 glob 规则集合。
	FileExclusions []string `json:"fileExclusions"`

	// CustomPatterns 追加在 Cleaner 内置规则之后。
	CustomPatterns []Pattern `json:"customPatterns"`
	// CustomSecretPatterns 追加在 Redactor 内置规则之后。
	CustomSecretPatterns []Pattern `json:"customSecretPatterns"`

	// Verbose 控制进度输出；nil 视为未设置，最终默认 true。
	Verbose *bool `json:"verbose"`
	// TodoPrompt 是附加在分隔线之后的自由文本。
	TodoPrompt string `json:"todoPrompt"`

	Concurrency int `json:"concurrency"`
	MaxTokens   int `json:"maxTokens"`

	// Tokenizer 选择注册表中的实现名（"words" 或 "bpe"）。
	Tokenizer        string          `json:"tokenizer"`
	TokenizerOptions json.RawMessage `json:"tokenizerOptions"`

	Logging Logging `json:"logging"`
}

// Pattern 是调用方提供的清理/脱敏规则：一个正则与其替换串。
type Pattern struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
}

// Logging: 仅保留日志等级可配置；输出路径与轮转策略为固定默认。
type Logging struct {
	Level string `json:"level"`
}
