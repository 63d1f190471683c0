// Package archive 把校验过的工件字节写入对象存储并返回持久引用。
package archive

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

// Store 是对象存储的最小接口。
//
// 约束：
// - Put 自行处理命名冲突（同名不覆盖：追加数字后缀另存），
//   返回的引用必须指向本次写入的对象。
// - 引用是可对外解引用的字符串（file://... / s3://bucket/key）。
type Store interface {
	Put(ctx context.Context, name string, data []byte) (reference string, err error)
}

// maxSuffixRetry 是同名冲突时数字后缀的尝试上限。超过即视为存储异常。
const maxSuffixRetry = 100

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName 由工件 URL 推导存储文件名：
// - 取去掉 query/fragment 后路径的最后一段
// - 没有可用段（为空或无扩展名）时退化为时间戳名
// - 收敛到安全字符集，并强制 .pdf 扩展名（替换掉其它扩展名）
func FileName(rawURL string, now time.Time) string {
	name := ""
	if u, err := url.Parse(strings.TrimSpace(rawURL)); err == nil {
		base := path.Base(u.Path)
		if base != "." && base != "/" && path.Ext(base) != "" {
			name = base
		}
	}
	if name == "" {
		return "artifact-" + now.UTC().Format("20060102-150405") + ".pdf"
	}

	name = unsafeChars.ReplaceAllString(name, "_")
	// 无条件重写扩展名：大小写不一的 .PDF 也收敛为规范形式。
	ext := path.Ext(name)
	name = strings.TrimSuffix(name, ext) + ".pdf"
	return name
}

// suffixed 生成第 n 次冲突重试的文件名：x.pdf -> x-1.pdf、x-2.pdf…
func suffixed(name string, n int) string {
	ext := path.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
}
