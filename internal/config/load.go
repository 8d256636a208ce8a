package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Defaults 返回带有安全默认值的 Config 雏形。
func Defaults() Config {
	v := true
	return Config{
		Dir:            ".",
		OutputFilePath: "prompt.md",
		Verbose:        &v,
		Concurrency:    4,
		MaxTokens:      2048,
		Tokenizer:      "words",
		Logging:        Logging{Level: "info"},
	}
}

// knownTopLevelKeys 镜像 Config 的 json 标签，供 LoadJSON 用于检测未知顶层
// 选项。未知选项只是警告并被忽略，不应使
// 整个解析失败。
var knownTopLevelKeys = map[string]bool{
	"dir": true, "outputFilePath": true,
	"fileTypeExclusions": true, "fileExclusions": true,
	"customPatterns": true, "customSecretPatterns": true,
	"verbose": true, "todoPrompt": true,
	"concurrency": true, "maxTokens": true,
	"tokenizer": true, "tokenizerOptions": true,
	"logging": true,
}

// LoadJSON 从文件路径或原始 JSON 解析 Config。未知顶层字段被忽略而非拒绝；
// warn 回调（可为 nil）收到每个被忽略字段的名称。
func LoadJSON(path string, raw []byte, warn func(string)) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return cfg, err
	}
	if warn != nil {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(body, &probe); err == nil {
			for k := range probe {
				if !knownTopLevelKeys[k] {
					warn(k)
				}
			}
		}
	}
	if err := json.Unmarshal(body, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Merge 按优先级合并（后者覆盖前者）。标量/字符串/切片/原样 JSON 均为整体
// 替换；不做深度合并，对应 CLI > ENV > JSON 的三层覆盖顺序。
func Merge(base, over Config) Config {
	out := base
	if strings.TrimSpace(over.Dir) != "" {
		out.Dir = strings.TrimSpace(over.Dir)
	}
	if strings.TrimSpace(over.OutputFilePath) != "" {
		out.OutputFilePath = strings.TrimSpace(over.OutputFilePath)
	}
	if len(over.FileTypeExclusions) > 0 {
		out.FileTypeExclusions = cloneStrings(over.FileTypeExclusions)
	}
	if len(over.FileExclusions) > 0 {
		out.FileExclusions = cloneStrings(over.FileExclusions)
	}
	if len(over.CustomPatterns) > 0 {
		out.CustomPatterns = append([]Pattern{}, over.CustomPatterns...)
	}
	if len(over.CustomSecretPatterns) > 0 {
		out.CustomSecretPatterns = append([]Pattern{}, over.CustomSecretPatterns...)
	}
	if over.Verbose != nil {
		out.Verbose = over.Verbose
	}
	if strings.TrimSpace(over.TodoPrompt) != "" {
		out.TodoPrompt = over.TodoPrompt
	}
	if over.Concurrency != 0 {
		out.Concurrency = over.Concurrency
	}
	if over.MaxTokens != 0 {
		out.MaxTokens = over.MaxTokens
	}
	if strings.TrimSpace(over.Tokenizer) != "" {
		out.Tokenizer = strings.TrimSpace(over.Tokenizer)
	}
	if len(over.TokenizerOptions) > 0 {
		out.TokenizerOptions = cloneRaw(over.TokenizerOptions)
	}
	if strings.TrimSpace(over.Logging.Level) != "" {
		out.Logging.Level = strings.TrimSpace(over.Logging.Level)
	}
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 前缀 TOAK_；集合之外的键忽略。
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, "TOAK_") {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len("TOAK_") {
			continue
		}
		key := kv[:eq]
		val := kv[eq+1:]
		switch strings.TrimPrefix(key, "TOAK_") {
		case "DIR":
			over.Dir = strings.TrimSpace(val)
		case "OUTPUT_FILE_PATH":
			over.OutputFilePath = strings.TrimSpace(val)
		case "FILE_TYPE_EXCLUSIONS":
			over.FileTypeExclusions = splitComma(val)
		case "FILE_EXCLUSIONS":
			over.FileExclusions = splitComma(val)
		case "VERBOSE":
			if b, err := parseBool(val); err == nil {
				over.Verbose = &b
			}
		case "TODO_PROMPT":
			over.TodoPrompt = val
		case "CONCURRENCY":
			if v, err := atoi(val); err == nil {
				over.Concurrency = v
			}
		case "MAX_TOKENS":
			if v, err := atoi(val); err == nil {
				over.MaxTokens = v
			}
		case "TOKENIZER":
			over.Tokenizer = strings.TrimSpace(val)
		case "LOG_LEVEL":
			over.Logging.Level = strings.TrimSpace(val)
		default:
			// 集合之外的键忽略。
		}
	}
	return over, nil
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneRaw(in json.RawMessage) json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func atoi(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("config: invalid bool %q", s)
	}
}
