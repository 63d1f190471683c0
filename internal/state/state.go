// Package state 提供基于 sqlite 的进程外状态：键值属性与延迟票据。
//
// 这是“挂起即进程退出”模型的落脚点：会话、续跑票据都必须活在
// 进程之外，新实例才接得上。
package state

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS props (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tickets (
	id         TEXT PRIMARY KEY,
	entry      TEXT NOT NULL,
	fire_at    TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_tickets_fire_at ON tickets(fire_at);
`

// DB 同时实现引擎消费的属性存储与调度服务接口。
type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("打开状态库失败 %q：%w", path, err)
	}
	// 单进程批处理：一个连接就够，还能避开 sqlite 的写锁竞争。
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("初始化状态库失败 %q：%w", path, err)
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error { return d.sql.Close() }
