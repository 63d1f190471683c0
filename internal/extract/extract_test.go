package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func pageServer(t *testing.T, html string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}))
}

func TestExtract_EmbedTypeThenSrc(t *testing.T) {
	srv := pageServer(t, `<html><body>
		<embed type="application/pdf" src="https://cdn.a.co/real.pdf">
	</body></html>`)
	defer srv.Close()

	got, err := Extract(context.Background(), srv.Client(), srv.URL+"/wrap.html")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got != "https://cdn.a.co/real.pdf" {
		t.Fatalf("提取结果不符合预期：%q", got)
	}
}

func TestExtract_SrcBeforeType(t *testing.T) {
	// 属性顺序反写的页面同样要命中。
	srv := pageServer(t, `<embed src="https://cdn.a.co/real.pdf" type="application/pdf">`)
	defer srv.Close()

	got, err := Extract(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got != "https://cdn.a.co/real.pdf" {
		t.Fatalf("提取结果不符合预期：%q", got)
	}
}

func TestExtract_ObjectDataAttr(t *testing.T) {
	srv := pageServer(t, `<object type="application/pdf" data="/docs/real.pdf"></object>`)
	defer srv.Close()

	got, err := Extract(context.Background(), srv.Client(), srv.URL+"/wrap")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got != srv.URL+"/docs/real.pdf" {
		t.Fatalf("相对路径应按包装页解析：%q", got)
	}
}

func TestExtract_ProtocolRelativeNormalized(t *testing.T) {
	srv := pageServer(t, `<embed type="application/pdf" src="//cdn.a.co/real.pdf">`)
	defer srv.Close()

	got, err := Extract(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got != "https://cdn.a.co/real.pdf" {
		t.Fatalf("协议相对 URL 应补 https:：%q", got)
	}
}

func TestExtract_NoMatchingTag(t *testing.T) {
	srv := pageServer(t, `<html><body><embed type="video/mp4" src="/x.mp4"><p>没有 PDF</p></body></html>`)
	defer srv.Close()

	if _, err := Extract(context.Background(), srv.Client(), srv.URL); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestExtract_Non2xxIsErrorNotPanic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := Extract(context.Background(), srv.Client(), srv.URL+"/gone"); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}
