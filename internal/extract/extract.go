// Package extract 从包装页 HTML 中定位内嵌的 PDF 工件 URL。
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/docark/internal/classify"
)

// Extract 抓取包装页并返回其中内嵌的工件 URL。
//
// 提取失败（抓取失败、非 2xx、页面里没有匹配标签）是预期内的结果，
// 以 error 形式返回给调用方写入该行的失败原因；绝不中断整个循环。
func Extract(ctx context.Context, c *http.Client, wrapperURL string) (string, error) {
	html, err := fetchPage(ctx, c, wrapperURL)
	if err != nil {
		return "", fmt.Errorf("抓取包装页失败：%w", err)
	}

	u, err := find(html)
	if err != nil {
		return "", err
	}
	return resolveURL(wrapperURL, u), nil
}

// find 扫描 embed/object 标签中声明 PDF 类型的那一个并读取其来源属性。
// goquery 解析后的 DOM 不关心属性书写顺序，type 在前在后都能命中。
func find(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("解析包装页失败：%w", err)
	}

	var found string
	doc.Find("embed, object").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		ct, _ := s.Attr("type")
		if !classify.IsPDFContentType(ct) {
			return true
		}
		// embed 用 src，object 用 data；个别页面反着写，两个都看。
		for _, attr := range []string{"src", "data"} {
			if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
				found = strings.TrimSpace(v)
				return false
			}
		}
		return true
	})

	if found == "" {
		return "", fmt.Errorf("页面中没有声明 %s 的内嵌标签", classify.PDFContentType)
	}
	return found, nil
}

func fetchPage(ctx context.Context, c *http.Client, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// resolveURL 把提取出的来源属性归一为绝对 URL：
// - //host/x（协议相对）补 https:
// - 相对路径按包装页 URL 解析
func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	bu, err := url.Parse(base)
	if err != nil {
		return href
	}
	ru, err := url.Parse(href)
	if err != nil {
		return href
	}
	return bu.ResolveReference(ru).String()
}
