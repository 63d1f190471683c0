package sheet

import (
	"fmt"
	"testing"

	"github.com/John-Robertt/docark/internal/domain"
)

func TestColumnIndex(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"A", 1, true},
		{"a", 1, true},
		{"Z", 26, true},
		{"AA", 27, true},
		{"AB", 28, true},
		{" C ", 3, true},
		{"", 0, false},
		{"A1", 0, false},
		{"中", 0, false},
	}
	for _, c := range cases {
		got, err := ColumnIndex(c.in)
		if c.ok && err != nil {
			t.Fatalf("ColumnIndex(%q) 不期望错误：%v", c.in, err)
		}
		if !c.ok {
			if err == nil {
				t.Fatalf("ColumnIndex(%q) 期望错误，但得到 %d", c.in, got)
			}
			continue
		}
		if got != c.want {
			t.Fatalf("ColumnIndex(%q)=%d，期望 %d", c.in, got, c.want)
		}
	}
}

// fakeStore 是内存 RecordStore，用于 Tracker 的行为测试。
type fakeStore struct {
	sheets map[string]map[[2]int]string // name -> {col,row} -> value
	writes []string
}

func newFakeStore(name string) *fakeStore {
	return &fakeStore{sheets: map[string]map[[2]int]string{name: {}}}
}

func (s *fakeStore) set(name string, col, row int, v string) {
	s.sheets[name][[2]int{col, row}] = v
}

func (s *fakeStore) Worksheets() ([]string, error) {
	out := make([]string, 0, len(s.sheets))
	for k := range s.sheets {
		out = append(out, k)
	}
	return out, nil
}

func (s *fakeStore) ReadColumn(name string, col, startRow int) ([]string, error) {
	m, ok := s.sheets[name]
	if !ok {
		return nil, fmt.Errorf("工作表不存在：%q", name)
	}
	last := 0
	for k := range m {
		if k[0] == col && k[1] > last && m[k] != "" {
			last = k[1]
		}
	}
	var out []string
	for r := startRow; r <= last; r++ {
		out = append(out, m[[2]int{col, r}])
	}
	return out, nil
}

func (s *fakeStore) ReadCell(name string, col, row int) (string, error) {
	m, ok := s.sheets[name]
	if !ok {
		return "", fmt.Errorf("工作表不存在：%q", name)
	}
	return m[[2]int{col, row}], nil
}

func (s *fakeStore) WriteCell(name string, col, row int, value string) error {
	m, ok := s.sheets[name]
	if !ok {
		return fmt.Errorf("工作表不存在：%q", name)
	}
	m[[2]int{col, row}] = value
	s.writes = append(s.writes, fmt.Sprintf("%d:%d=%s", col, row, value))
	return nil
}

func TestTracker_ItemsSkipsBlankSourceRows(t *testing.T) {
	fs := newFakeStore("refs")
	fs.set("refs", 1, 2, "https://a.co/x.pdf")
	fs.set("refs", 1, 3, "") // 空来源行：直接略过
	fs.set("refs", 1, 4, "https://a.co/wrap.html")
	fs.set("refs", 3, 4, "file:///archive/real.pdf")

	tr := NewTracker(fs, "refs", Columns{Source: 1, Extracted: 2, Result: 3}, 2)
	items, err := tr.Items()
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(items) != 2 {
		t.Fatalf("期望 2 个工作项，实际 %d：%+v", len(items), items)
	}
	if items[0].Row != 2 || items[0].Processed() {
		t.Fatalf("第 2 行不符合预期：%+v", items[0])
	}
	if items[1].Row != 4 || !items[1].Processed() {
		t.Fatalf("第 4 行应为已处理：%+v", items[1])
	}
}

func TestTracker_RecordFailureWritesPrefix(t *testing.T) {
	fs := newFakeStore("refs")
	tr := NewTracker(fs, "refs", Columns{Source: 1, Extracted: 2, Result: 3}, 2)

	if err := tr.RecordFailure(5, "下载失败：HTTP 404"); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	got, _ := fs.ReadCell("refs", 3, 5)
	if !domain.IsFailureValue(got) {
		t.Fatalf("期望失败前缀，实际 %q", got)
	}
}

func TestTracker_ExtractedBeforeResultOrder(t *testing.T) {
	fs := newFakeStore("refs")
	tr := NewTracker(fs, "refs", Columns{Source: 1, Extracted: 2, Result: 3}, 2)

	if err := tr.RecordExtracted(2, "https://cdn.a.co/real.pdf"); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := tr.RecordSuccess(2, "file:///archive/real.pdf"); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(fs.writes) != 2 || fs.writes[0] != "2:2=https://cdn.a.co/real.pdf" {
		t.Fatalf("写入顺序不符合预期（结果列必须最后写）：%v", fs.writes)
	}
}
