package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// UT-CFG-01: 解析完整 config.json
func TestLoadJSON(t *testing.T) {
	cfg, err := LoadJSON("../../testdata/config/basic.json", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "./repo", cfg.Dir)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.NoError(t, Validate(Merge(Defaults(), cfg)))
}

// 未知顶层字段只警告，不拒绝解析。
func TestLoadJSONUnknownFieldWarnsNotFails(t *testing.T) {
	raw := []byte(`{"dir":".","unknownOption":1}`)
	var warned []string
	cfg, err := LoadJSON("", raw, func(k string) { warned = append(warned, k) })
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.Dir)
	assert.Equal(t, []string{"unknownOption"}, warned)
}

// UT-CFG-02: ENV 覆盖部分字段
func TestEnvOverlay(t *testing.T) {
	env := []string{
		"TOAK_DIR=/tmp/repo",
		"TOAK_CONCURRENCY=6",
		"TOAK_TOKENIZER=bpe",
		"TOAK_VERBOSE=false",
	}
	over, err := EnvOverlay(env)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/repo", over.Dir)
	assert.Equal(t, 6, over.Concurrency)
	assert.Equal(t, "bpe", over.Tokenizer)
	require.NotNil(t, over.Verbose)
	assert.False(t, *over.Verbose)
}

// 补充覆盖: splitComma 与 atoi
func TestSplitCommaAtoi(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitComma("a, b , ,c"))
	v, err := atoi("10")
	require.NoError(t, err)
	assert.Equal(t, 10, v)
}

// 补充覆盖: Defaults 与 cloneRaw
func TestDefaultsClone(t *testing.T) {
	d := Defaults()
	assert.Equal(t, "words", d.Tokenizer)
	assert.GreaterOrEqual(t, d.Concurrency, 1)

	src := []byte("abc")
	dst := cloneRaw(src)
	src[0] = 'x'
	assert.Equal(t, "abc", string(dst))
}

// 补充覆盖: Validate 错误分支
func TestValidateErrors(t *testing.T) {
	assert.Error(t, Validate(Config{}), "空配置应失败")

	cfg := DefaultTemplateConfig()
	cfg.Dir = ""
	assert.Error(t, Validate(cfg), "dir 为空应失败")

	cfg = DefaultTemplateConfig()
	cfg.MaxTokens = 0
	assert.Error(t, Validate(cfg), "MaxTokens<=0 应失败")

	cfg = DefaultTemplateConfig()
	cfg.Tokenizer = "not-a-real-tokenizer"
	assert.Error(t, Validate(cfg), "未注册 tokenizer 应失败")
}

// Merge 遵循 CLI > ENV > JSON 的整体替换语义。
func TestMergeOverridesNonZeroFields(t *testing.T) {
	base := DefaultTemplateConfig()
	over := Config{Concurrency: 9, Tokenizer: "bpe"}
	out := Merge(base, over)
	assert.Equal(t, 9, out.Concurrency)
	assert.Equal(t, "bpe", out.Tokenizer)
	assert.Equal(t, base.MaxTokens, out.MaxTokens, "未覆盖字段不应改变")
}
