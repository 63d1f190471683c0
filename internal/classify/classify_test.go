package classify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClassify_ProbeSaysPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("期望 HEAD 探测，实际 %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/pdf")
	}))
	defer srv.Close()

	// URL 没有 .pdf 后缀：只能靠探测判定。
	if got := Classify(context.Background(), srv.Client(), srv.URL+"/download?id=42"); got != Direct {
		t.Fatalf("期望 direct，实际 %v", got)
	}
}

func TestClassify_SuffixWinsEvenWhenProbeFails(t *testing.T) {
	// 服务器对 HEAD 一律 500：后缀规则必须兜底。
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if got := Classify(context.Background(), srv.Client(), srv.URL+"/files/x.PDF"); got != Direct {
		t.Fatalf("期望 direct（后缀兜底），实际 %v", got)
	}
}

func TestClassify_ProbeTimeoutFallsBackToSuffix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := &http.Client{Timeout: 20 * time.Millisecond}
	if got := Classify(context.Background(), c, srv.URL+"/x.pdf"); got != Direct {
		t.Fatalf("探测超时也应按后缀判 direct，实际 %v", got)
	}
	if got := Classify(context.Background(), c, srv.URL+"/page.html"); got != Wrapper {
		t.Fatalf("探测超时且无后缀应判 wrapper，实际 %v", got)
	}
}

func TestClassify_HTMLPageIsWrapper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}))
	defer srv.Close()

	if got := Classify(context.Background(), srv.Client(), srv.URL+"/wrap.html"); got != Wrapper {
		t.Fatalf("期望 wrapper，实际 %v", got)
	}
}

func TestIsPDFContentType(t *testing.T) {
	cases := []struct {
		ct   string
		want bool
	}{
		{"application/pdf", true},
		{"Application/PDF; charset=binary", true},
		{"text/html", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsPDFContentType(c.ct); got != c.want {
			t.Fatalf("IsPDFContentType(%q)=%v，期望 %v", c.ct, got, c.want)
		}
	}
}
