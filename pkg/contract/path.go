package contract

import "path"

// NormalizePath 规范化路径，统一为跨平台稳定的 Path。
// 规则：
// - 使用正斜杠分隔符
// - 清理多余分隔符与路径片段（.、..）
// - 保留相对语义，不做隐式绝对化
func NormalizePath(p string) Path {
	s := ""
	for _, r := range p {
		if r == '\\' {
			s += "/"
		} else {
			s += string(r)
		}
	}
	return Path(path.Clean(s))
}
