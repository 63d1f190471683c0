package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetProp 读取字符串属性。不存在不是错误：ok=false。
func (d *DB) GetProp(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := d.sql.QueryRowContext(ctx, `SELECT value FROM props WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("读取属性 %q 失败：%w", key, err)
	}
	return v, true, nil
}

// SetProp 写入（或覆盖）字符串属性。
func (d *DB) SetProp(ctx context.Context, key, value string) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO props (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("写入属性 %q 失败：%w", key, err)
	}
	return nil
}

// DeleteProp 删除属性；不存在也算成功（幂等）。
func (d *DB) DeleteProp(ctx context.Context, key string) error {
	_, err := d.sql.ExecContext(ctx, `DELETE FROM props WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("删除属性 %q 失败：%w", key, err)
	}
	return nil
}
