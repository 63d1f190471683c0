package fsx

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomicNoOverwrite_WritesOnce(t *testing.T) {
	dir := t.TempDir()

	if err := WriteFileAtomicNoOverwrite(dir, "x.pdf", []byte("v1")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "x.pdf"))
	if err != nil || string(b) != "v1" {
		t.Fatalf("读取写入结果失败：%q err=%v", b, err)
	}

	err = WriteFileAtomicNoOverwrite(dir, "x.pdf", []byte("v2"))
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("期望 os.ErrExist，实际 %v", err)
	}
	b, _ = os.ReadFile(filepath.Join(dir, "x.pdf"))
	if string(b) != "v1" {
		t.Fatalf("已存在文件不应被覆盖：%q", b)
	}
}

func TestWriteFileAtomicNoOverwrite_DirConflict(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "x.pdf"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	err := WriteFileAtomicNoOverwrite(dir, "x.pdf", []byte("v"))
	if !IsPathTypeConflict(err) {
		t.Fatalf("期望类型冲突错误，实际 %v", err)
	}
}

func TestWriteFileAtomicNoOverwrite_NoTempLeftover(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFileAtomicNoOverwrite(dir, "x.pdf", []byte("v")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("读取目录失败：%v", err)
	}
	if len(ents) != 1 || ents[0].Name() != "x.pdf" {
		t.Fatalf("目录内容不符合预期：%v", ents)
	}
}
