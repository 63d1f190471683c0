package engine

import (
	"time"

	"github.com/John-Robertt/docark/internal/domain"
)

// Observer 把“运行进度/条目结果”从核心循环中解耦出来。
//
// 约束：engine 只负责发事件，不做任何输出（stdout 留给 RunReport JSON）。
type Observer interface {
	// OnStart 在会话解析完成、开始逐行循环前调用。
	OnStart(worksheet string, total int)
	// OnItemDone 在一行处理完成（含跳过与失败）时调用。
	OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration)
	// OnSuspend 在预算耗尽、续跑票据已排定后调用。
	OnSuspend(remaining int, ticketID string)
}
