package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/John-Robertt/docark/internal/domain"
)

// progress 把引擎事件打到 stderr，一行一个条目。
type progress struct {
	ok   *color.Color
	bad  *color.Color
	warn *color.Color
}

func newProgress() *progress {
	return &progress{
		ok:   color.New(color.FgGreen),
		bad:  color.New(color.FgRed),
		warn: color.New(color.FgYellow),
	}
}

func (p *progress) OnStart(worksheet string, total int) {
	fmt.Fprintf(os.Stderr, "工作表 %s：共 %d 行待检查\n", worksheet, total)
}

func (p *progress) OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration) {
	switch res.Status {
	case domain.StatusSkipped:
		// 跳过的行不刷屏：续跑时前面可能有成百上千行已完成。
		return
	case domain.StatusProcessed:
		fmt.Fprintf(os.Stderr, "[%d/%d] 行 %d %s %s (%s)\n",
			idx, total, res.Row, p.ok.Sprint("完成"), res.Reference, dur.Round(time.Millisecond))
	default:
		fmt.Fprintf(os.Stderr, "[%d/%d] 行 %d %s %s：%s\n",
			idx, total, res.Row, p.bad.Sprint("失败"), res.ErrorCode, res.ErrorMsg)
	}
}

func (p *progress) OnSuspend(remaining int, ticketID string) {
	fmt.Fprintf(os.Stderr, "%s 剩余 %d 行，续跑票据 %s\n", p.warn.Sprint("挂起："), remaining, ticketID)
}
