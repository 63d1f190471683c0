package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Ticket 是一张延迟再调用票据。id 由这里分配（调用方视为不透明值）。
type Ticket struct {
	ID        string
	Entry     string
	FireAt    time.Time
	CreatedAt time.Time
}

// CreateDelayed 排入一张 delay 之后触发 entry 的票据，返回票据 id。
func (d *DB) CreateDelayed(ctx context.Context, entry string, delay time.Duration) (string, error) {
	id := uuid.NewString()
	fireAt := time.Now().UTC().Add(delay)
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO tickets (id, entry, fire_at, created_at) VALUES (?, ?, ?, ?)`,
		id, entry, fireAt, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("创建票据失败：%w", err)
	}
	return id, nil
}

// ListTickets 返回全部未触发票据（含操作者手工排入的）。
func (d *DB) ListTickets(ctx context.Context) ([]Ticket, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, entry, fire_at, created_at FROM tickets ORDER BY fire_at`)
	if err != nil {
		return nil, fmt.Errorf("列举票据失败：%w", err)
	}
	defer rows.Close()

	var out []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.Entry, &t.FireAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CancelTicket 删除一张票据；不存在也算成功（取消必须幂等）。
func (d *DB) CancelTicket(ctx context.Context, id string) error {
	_, err := d.sql.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("取消票据 %q 失败：%w", id, err)
	}
	return nil
}

// ClaimDue 原子地取走一张已到期票据（先到期先触发）；没有则返回 nil。
// 取走即删除：票据最多触发一次。
func (d *DB) ClaimDue(ctx context.Context, now time.Time) (*Ticket, error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var t Ticket
	err = tx.QueryRowContext(ctx,
		`SELECT id, entry, fire_at, created_at FROM tickets WHERE fire_at <= ? ORDER BY fire_at LIMIT 1`,
		now.UTC(),
	).Scan(&t.ID, &t.Entry, &t.FireAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("认领到期票据失败：%w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, t.ID); err != nil {
		return nil, fmt.Errorf("删除已认领票据失败：%w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &t, nil
}
