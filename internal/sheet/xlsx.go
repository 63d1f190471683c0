package sheet

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSX 是 RecordStore 的 xlsx 工作簿实现（excelize）。
//
// 持久化策略：每次 WriteCell 都整本保存。对单线程批处理来说这是可接受的
// 代价，换来的是“结果写入先于下一行开始就已落盘”的恢复语义。
type XLSX struct {
	path string
	f    *excelize.File
}

func OpenXLSX(path string) (*XLSX, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("打开工作簿失败 %q：%w", path, err)
	}
	return &XLSX{path: path, f: f}, nil
}

func (x *XLSX) Close() error { return x.f.Close() }

func (x *XLSX) Path() string { return x.path }

func (x *XLSX) Worksheets() ([]string, error) {
	return x.f.GetSheetList(), nil
}

func (x *XLSX) ReadColumn(sheetName string, col, startRow int) ([]string, error) {
	if err := x.checkSheet(sheetName); err != nil {
		return nil, err
	}
	rows, err := x.f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(rows))
	for i := startRow - 1; i < len(rows); i++ {
		v := ""
		if col-1 < len(rows[i]) {
			v = rows[i][col-1]
		}
		out = append(out, v)
	}
	// 去掉尾部空行（中间空行保留：行号必须可由下标推算）。
	for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (x *XLSX) ReadCell(sheetName string, col, row int) (string, error) {
	if err := x.checkSheet(sheetName); err != nil {
		return "", err
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	return x.f.GetCellValue(sheetName, cell)
}

func (x *XLSX) WriteCell(sheetName string, col, row int, value string) error {
	if err := x.checkSheet(sheetName); err != nil {
		return err
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := x.f.SetCellValue(sheetName, cell, value); err != nil {
		return err
	}
	if err := x.f.Save(); err != nil {
		return fmt.Errorf("保存工作簿失败 %q：%w", x.path, err)
	}
	return nil
}

func (x *XLSX) checkSheet(sheetName string) error {
	idx, err := x.f.GetSheetIndex(sheetName)
	if err != nil {
		return err
	}
	if idx == -1 {
		return fmt.Errorf("工作表不存在：%q", sheetName)
	}
	return nil
}
