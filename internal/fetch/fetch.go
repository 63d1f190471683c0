// Package fetch 下载工件字节并校验声明的内容类型。
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/John-Robertt/docark/internal/classify"
)

// Artifact 下载 url 的字节。非 2xx、内容类型不含 PDF 签名都按失败处理，
// 以 error 返回给调用方写入行级失败原因。
//
// 内容类型校验防的是“误判的直链/被重定向到 HTML 的响应”把垃圾字节
// 悄悄写进归档。
func Artifact(ctx context.Context, c *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败：%w", err)
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("下载失败：%w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("下载失败：HTTP %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !classify.IsPDFContentType(ct) {
		return nil, fmt.Errorf("内容类型不是 PDF：%q", ct)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败：%w", err)
	}
	return b, nil
}
