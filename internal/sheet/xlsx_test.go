package sheet

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func newTestWorkbook(t *testing.T, sheetName string, cells map[string]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheetName != "Sheet1" {
		if _, err := f.NewSheet(sheetName); err != nil {
			t.Fatalf("创建工作表失败：%v", err)
		}
	}
	for cell, v := range cells {
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			t.Fatalf("写入 %s 失败：%v", cell, err)
		}
	}
	path := filepath.Join(t.TempDir(), "refs.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("保存工作簿失败：%v", err)
	}
	return path
}

func TestXLSX_ReadColumnStopsAtLastNonEmpty(t *testing.T) {
	path := newTestWorkbook(t, "refs", map[string]string{
		"A1": "来源",
		"A2": "https://a.co/x.pdf",
		"A4": "https://a.co/wrap.html", // A3 留空
	})
	x, err := OpenXLSX(path)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	defer x.Close()

	col, err := x.ReadColumn("refs", 1, 2)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{"https://a.co/x.pdf", "", "https://a.co/wrap.html"}
	if len(col) != len(want) {
		t.Fatalf("期望 %d 行，实际 %d：%v", len(want), len(col), col)
	}
	for i := range want {
		if col[i] != want[i] {
			t.Fatalf("第 %d 个值不符合预期：%q != %q", i, col[i], want[i])
		}
	}
}

func TestXLSX_WriteCellDurable(t *testing.T) {
	path := newTestWorkbook(t, "refs", map[string]string{"A2": "https://a.co/x.pdf"})
	x, err := OpenXLSX(path)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := x.WriteCell("refs", 3, 2, "file:///archive/x.pdf"); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	_ = x.Close()

	// 重新打开：写入必须已落盘（恢复语义依赖该行为）。
	x2, err := OpenXLSX(path)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	defer x2.Close()
	got, err := x2.ReadCell("refs", 3, 2)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got != "file:///archive/x.pdf" {
		t.Fatalf("重开后读到 %q", got)
	}
}

func TestXLSX_UnknownSheet(t *testing.T) {
	path := newTestWorkbook(t, "refs", nil)
	x, err := OpenXLSX(path)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	defer x.Close()
	if _, err := x.ReadColumn("不存在", 1, 2); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	if err := x.WriteCell("不存在", 1, 2, "v"); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}
