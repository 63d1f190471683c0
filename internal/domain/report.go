package domain

import (
	"sort"
	"time"
)

const (
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

const (
	ErrCodeExtractFailed  = "extract_failed"
	ErrCodeFetchFailed    = "fetch_failed"
	ErrCodePersistFailed  = "persist_failed"
	ErrCodeRecordFailed   = "record_failed"
	ErrCodeSessionInvalid = "session_invalid"
	ErrCodeConfigNotFound = "config_not_found"
	ErrCodeConfigInvalid  = "config_invalid"
)

// RunReport 是单次调用的对外稳定输出（stdout JSON）。
// 一次调用可能只处理集合的一部分：Suspended=true 表示时间预算耗尽、
// 已排定续跑，剩余行留待下一个进程实例。
type RunReport struct {
	Workbook  string `json:"workbook"`
	Worksheet string `json:"worksheet"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Suspended 表示本次以“挂起”收尾（已创建续跑票据）。
	Suspended bool `json:"suspended"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// ItemResult 是一行的处理结果。失败也是结果：ErrorMsg 同步写入结果列。
type ItemResult struct {
	Row    int    `json:"row"`
	Source string `json:"source"`

	// Extracted 是包装页中提取出的工件 URL（direct 链接时为空）。
	Extracted string `json:"extracted,omitempty"`

	Status    string `json:"status"`
	Reference string `json:"reference,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	ErrorMsg  string `json:"error_msg,omitempty"`
}

// Finalize 统一时间为 UTC、按行号稳定排序并重算 summary。
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		return r.Items[i].Row < r.Items[j].Row
	})

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusProcessed:
			s.Processed++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}
