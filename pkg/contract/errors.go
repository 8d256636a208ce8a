package contract

import "errors"

// 领域最小错误分类，供 diag.Classify 与调用方 errors.Is 匹配使用。
var (
	// ErrPathInvalid: 路径越界、为空或包含非法卷名。
	ErrPathInvalid = errors.New("path invalid")
	// ErrBudgetExceeded: 单个片段无法在 maxTokens 预算内容纳，即使独占一块。
	ErrBudgetExceeded = errors.New("budget exceeded")
	// ErrInvariantViolation: 领域不变量违例（通用哨兵）。
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrPatternInvalid: 自定义清理/密钥正则编译失败。
	ErrPatternInvalid = errors.New("custom pattern invalid")
	// ErrUnsupported: 能力边界之外的内容（如二进制/图像）没有对应解码器。
	ErrUnsupported = errors.New("unsupported content")
)
