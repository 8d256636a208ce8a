// Package registry is the explicit, zero-reflection factory table the
// loader uses to turn a named configuration option into a live component.
// Every entry is a plain map literal: no interface scanning, no reflect
// based struct tag walking.
package registry

import (
	"bytes"
	"encoding/json"

	"toak/internal/tokenizer"
	"toak/pkg/contract"
)

// strictUnmarshal: 使用 DisallowUnknownFields 严格解码，拒绝未知字段。
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		// 保持零值（默认选项）
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// NewTokenizer 工厂签名：接收原样 JSON Options。
type NewTokenizer func(raw json.RawMessage) (contract.Tokenizer, error)

// Tokenizer 工厂注册表。
var Tokenizer = map[string]NewTokenizer{
	// words: 空白分词计数器，默认实现，无额外选项。
	"words": func(raw json.RawMessage) (contract.Tokenizer, error) {
		if err := strictUnmarshal(raw, &struct{}{}); err != nil {
			return nil, err
		}
		return tokenizer.New(), nil
	},
	// bpe: tiktoken-go 承载的 BPE 词表，要求本地缓存，不做联网获取。
	"bpe": func(raw json.RawMessage) (contract.Tokenizer, error) {
		if err := strictUnmarshal(raw, &struct{}{}); err != nil {
			return nil, err
		}
		return tokenizer.NewBPE()
	},
}
