package engine

import "time"

// WithinBudget 报告自 start 起的耗时是否仍低于软性上限 ceiling。
//
// ceiling 必须严格小于宿主环境的硬性执行上限，保证超限时引擎
// 还有时间完成续跑交接（创建票据、落盘会话）再退出。
// 每个工作项开始前与结束后各检查一次：单个工作项的下载+归档
// 本身就可能吃掉剩余预算的一大块。
func WithinBudget(start time.Time, ceiling time.Duration) bool {
	return time.Since(start) < ceiling
}
