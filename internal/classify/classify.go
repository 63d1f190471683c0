// Package classify 判定来源引用是“已是 PDF 直链”还是“需要提取的包装页”。
package classify

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// Kind 是分类结果。它是临时值：每次尝试都重新计算，绝不跨行/跨续跑缓存。
type Kind int

const (
	// Direct 表示来源引用本身就是工件 URL，可直接下载。
	Direct Kind = iota
	// Wrapper 表示来源引用是包装页，需要先提取内嵌工件 URL。
	Wrapper
)

func (k Kind) String() string {
	if k == Direct {
		return "direct"
	}
	return "wrapper"
}

// PDFContentType 是工件的 MIME 签名；Content-Type 只要包含它就算命中
// （带 charset 等参数的声明也能匹配）。
const PDFContentType = "application/pdf"

// IsPDFContentType 判断 Content-Type 声明是否为 PDF。
func IsPDFContentType(ct string) bool {
	return strings.Contains(strings.ToLower(ct), PDFContentType)
}

// Classify 对来源引用做只取元数据的 HEAD 探测（不拉正文）。
//
// 规则（按序）：
// 1) 探测成功（2xx）且声明 PDF 类型 => Direct
// 2) 路径后缀为 .pdf => Direct（即使探测失败/超时也成立）
// 3) 其余 => Wrapper
//
// 探测的任何失败（网络错误、非 2xx、超时）都被吞掉：把直链误判成包装页
// 只是多付一次注定失败的提取；反向误判则会下载到垃圾字节。
func Classify(ctx context.Context, c *http.Client, reference string) Kind {
	if ct, ok := probe(ctx, c, reference); ok && IsPDFContentType(ct) {
		return Direct
	}
	if hasPDFSuffix(reference) {
		return Direct
	}
	return Wrapper
}

func probe(ctx context.Context, c *http.Client, rawURL string) (contentType string, ok bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "", false
	}
	resp, err := c.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", false
	}
	return resp.Header.Get("Content-Type"), true
}

func hasPDFSuffix(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return strings.EqualFold(path.Ext(u.Path), ".pdf")
}
