package domain

import (
	"testing"
	"time"
)

func TestFinalize_SortsAndCounts(t *testing.T) {
	rr := RunReport{
		StartedAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600)),
		FinishedAt: time.Date(2025, 1, 2, 3, 9, 5, 0, time.FixedZone("X", 3600)),
		Items: []ItemResult{
			{Row: 5, Status: StatusFailed},
			{Row: 2, Status: StatusProcessed},
			{Row: 3, Status: StatusSkipped},
			{Row: 4, Status: StatusProcessed},
		},
	}
	rr.Finalize()

	if rr.StartedAt.Location() != time.UTC || rr.FinishedAt.Location() != time.UTC {
		t.Fatalf("期望时间统一为 UTC：%v / %v", rr.StartedAt, rr.FinishedAt)
	}
	for i := 1; i < len(rr.Items); i++ {
		if rr.Items[i-1].Row > rr.Items[i].Row {
			t.Fatalf("期望按行号排序：%+v", rr.Items)
		}
	}
	if rr.Summary.Processed != 2 || rr.Summary.Skipped != 1 || rr.Summary.Failed != 1 {
		t.Fatalf("summary 不符合预期：%+v", rr.Summary)
	}
}

func TestWorkItem_Processed(t *testing.T) {
	cases := []struct {
		result string
		want   bool
	}{
		{"", false},
		{"   ", false},
		{"file:///archive/x.pdf", true},
		{FailureValue("下载失败"), true},
	}
	for _, c := range cases {
		w := WorkItem{Row: 2, Source: "https://a.co/x.pdf", Result: c.result}
		if got := w.Processed(); got != c.want {
			t.Fatalf("Processed(%q)=%v，期望 %v", c.result, got, c.want)
		}
	}
}

func TestFailureValue_RoundTrip(t *testing.T) {
	v := FailureValue("  下载失败：HTTP 404 ")
	if v != "ERROR: 下载失败：HTTP 404" {
		t.Fatalf("失败值不符合预期：%q", v)
	}
	if !IsFailureValue(v) {
		t.Fatalf("期望识别为失败值：%q", v)
	}
	if IsFailureValue("file:///archive/x.pdf") {
		t.Fatalf("成功引用不应识别为失败值")
	}
}
