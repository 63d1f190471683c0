package domain

import "strings"

// FailurePrefix 是写入结果列的失败标记前缀。
// 结果列非空即视为“已处理”；该前缀只用于让人（或后续脚本）区分成功引用与失败原因。
const FailurePrefix = "ERROR: "

// WorkItem 是一行待处理的工作单元。
// Row 采用表格的 1-based 行号（与用户在表格软件里看到的一致）。
type WorkItem struct {
	Row    int
	Source string

	// Result 是读取时结果列的现值。非空即终态：绝不重新处理。
	// 这是恢复/幂等的唯一信号，没有单独的状态列。
	Result string
}

// Processed 判断该行是否已是终态（成功或失败均算）。
func (w WorkItem) Processed() bool {
	return strings.TrimSpace(w.Result) != ""
}

// FailureValue 把失败原因包装为结果列的写入值。
func FailureValue(reason string) string {
	return FailurePrefix + strings.TrimSpace(reason)
}

// IsFailureValue 判断结果列的值是否为失败标记。
func IsFailureValue(v string) bool {
	return strings.HasPrefix(strings.TrimSpace(v), FailurePrefix)
}
