// Package sheet 封装按“行号 + 字母列”寻址的表格存储，以及行级处理状态的读写。
package sheet

import (
	"fmt"
	"strings"

	"github.com/John-Robertt/docark/internal/domain"
)

// RecordStore 是有序行表格的最小接口（1-based 行号，1-based 列号）。
//
// 约束：
// - WriteCell 返回前必须持久可见：下一次 ReadCell/ReadColumn 读到的是新值，
//   进程中途被杀也不丢失已返回成功的写入。
// - 实现不做缓存失效之外的“聪明”处理；调度与跳过逻辑全部在上层。
type RecordStore interface {
	// Worksheets 返回全部工作表名（用于会话一致性校验）。
	Worksheets() ([]string, error)
	// ReadColumn 读取 sheetName 上 col 列自 startRow 起到最后一个非空行的值。
	// 中间的空单元格以空串占位（行号必须连续可推算）。
	ReadColumn(sheetName string, col, startRow int) ([]string, error)
	ReadCell(sheetName string, col, row int) (string, error)
	WriteCell(sheetName string, col, row int, value string) error
}

// ColumnIndex 把字母列标（"A"、"b"、"AA"）解析为 1-based 列号。
// 非法输入返回错误而不是猜测：列标来自配置，启动时一次性校验。
func ColumnIndex(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("列标不能为空")
	}
	n := 0
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			n = n*26 + int(r-'A'+1)
		case r >= 'a' && r <= 'z':
			n = n*26 + int(r-'a'+1)
		default:
			return 0, fmt.Errorf("非法列标：%q", name)
		}
	}
	return n, nil
}

// Columns 是引擎消费的三个列号（均已解析为数字）。
type Columns struct {
	Source    int
	Extracted int
	Result    int
}

// Tracker 维护单个工作表上的行级状态：读取待处理项、落结果。
//
// 恢复/幂等完全依赖结果列：非空即终态。因此对某一行而言，
// 结果写入必须是该行的最后一次写入（提取列先写、结果列后写）。
type Tracker struct {
	store     RecordStore
	sheetName string
	cols      Columns
	startRow  int
}

func NewTracker(store RecordStore, sheetName string, cols Columns, startRow int) *Tracker {
	if startRow < 1 {
		startRow = 1
	}
	return &Tracker{store: store, sheetName: sheetName, cols: cols, startRow: startRow}
}

// Items 返回自起始行起的全部工作项（含已处理项：跳过判定由调用方做，
// 这样 report 里能如实呈现 skipped）。
func (t *Tracker) Items() ([]domain.WorkItem, error) {
	sources, err := t.store.ReadColumn(t.sheetName, t.cols.Source, t.startRow)
	if err != nil {
		return nil, fmt.Errorf("读取来源列失败：%w", err)
	}

	items := make([]domain.WorkItem, 0, len(sources))
	for i, src := range sources {
		src = strings.TrimSpace(src)
		if src == "" {
			// 空来源行：没有可做的事，也不写任何结果。
			continue
		}
		row := t.startRow + i
		result, err := t.store.ReadCell(t.sheetName, t.cols.Result, row)
		if err != nil {
			return nil, fmt.Errorf("读取第 %d 行结果列失败：%w", row, err)
		}
		items = append(items, domain.WorkItem{Row: row, Source: src, Result: result})
	}
	return items, nil
}

// RecordExtracted 把包装页中提取出的工件 URL 写入提取列。
// 必须先于结果写入调用（结果列是终态信号）。
func (t *Tracker) RecordExtracted(row int, artifactURL string) error {
	return t.store.WriteCell(t.sheetName, t.cols.Extracted, row, artifactURL)
}

// RecordSuccess 写入持久引用。写入成功后该行即终态。
func (t *Tracker) RecordSuccess(row int, reference string) error {
	return t.store.WriteCell(t.sheetName, t.cols.Result, row, reference)
}

// RecordFailure 写入带前缀的人类可读失败原因。失败同样是终态：
// 续跑不会重试，只有操作者清空该单元格后重新运行才会重试。
func (t *Tracker) RecordFailure(row int, reason string) error {
	return t.store.WriteCell(t.sheetName, t.cols.Result, row, domain.FailureValue(reason))
}
