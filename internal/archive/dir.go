package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/John-Robertt/docark/internal/infra/fsx"
)

// DirStore 把工件归档到本地目录。
//
// 本地文件系统不容忍同名：用“原子不覆盖写 + 数字后缀重试”补齐
// 对象存储的同名容忍语义。
type DirStore struct {
	Dir string
}

func NewDirStore(dir string) (*DirStore, error) {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("归档目录不可用 %q：%w", dir, err)
	}
	return &DirStore{Dir: dir}, nil
}

func (s *DirStore) Put(_ context.Context, name string, data []byte) (string, error) {
	try := name
	for n := 0; ; n++ {
		if n > 0 {
			try = suffixed(name, n)
		}
		if n > maxSuffixRetry {
			return "", fmt.Errorf("同名冲突重试超过 %d 次：%q", maxSuffixRetry, name)
		}

		err := fsx.WriteFileAtomicNoOverwrite(s.Dir, try, data)
		if err == nil {
			abs, aerr := filepath.Abs(filepath.Join(s.Dir, try))
			if aerr != nil {
				return "", aerr
			}
			return "file://" + filepath.ToSlash(abs), nil
		}
		if errors.Is(err, os.ErrExist) {
			continue
		}
		return "", err
	}
}
