package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// 属性键。会话与票据清单都活在进程外的属性存储里：
// “挂起”是整个进程退出，新实例只能靠它们接上。
const (
	// PropSession 保存在途工作表名。仅在作业在途期间存在。
	PropSession = "docark.session"
	// PropTickets 保存自建票据 id 清单（JSON 数组）。
	// 只有清单里的票据才会被取消：操作者手工排入的票据绝不碰。
	PropTickets = "docark.tickets"

	// EntryRun 是续跑票据指向的入口名。
	EntryRun = "run"
)

// PropertyStore 是键值属性存储的最小接口（字符串进字符串出）。
type PropertyStore interface {
	GetProp(ctx context.Context, key string) (value string, ok bool, err error)
	SetProp(ctx context.Context, key, value string) error
	DeleteProp(ctx context.Context, key string) error
}

// Scheduler 是延迟再调用服务的最小接口。
type Scheduler interface {
	CreateDelayed(ctx context.Context, entry string, delay time.Duration) (id string, err error)
	CancelTicket(ctx context.Context, id string) error
}

// continuations 维护续跑票据的“至多一张在途”不变量。
type continuations struct {
	props PropertyStore
	sched Scheduler
	log   *slog.Logger
}

// Schedule 先取消全部已跟踪票据，再创建恰好一张新票据并记录其 id。
func (c *continuations) Schedule(ctx context.Context, entry string, delay time.Duration) (string, error) {
	if err := c.CancelAll(ctx); err != nil {
		return "", err
	}

	id, err := c.sched.CreateDelayed(ctx, entry, delay)
	if err != nil {
		return "", fmt.Errorf("创建续跑票据失败：%w", err)
	}

	b, err := json.Marshal([]string{id})
	if err != nil {
		return "", err
	}
	if err := c.props.SetProp(ctx, PropTickets, string(b)); err != nil {
		// 票据已创建但没记录下来：尽力回收，避免一张谁也不认的票据飘着。
		_ = c.sched.CancelTicket(ctx, id)
		return "", fmt.Errorf("记录票据 id 失败：%w", err)
	}
	c.log.Info("已排定续跑", "ticket", id, "delay", delay)
	return id, nil
}

// CancelAll 取消全部已跟踪票据并清空清单。幂等：没有票据也安全。
func (c *continuations) CancelAll(ctx context.Context) error {
	ids, err := c.tracked(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := c.sched.CancelTicket(ctx, id); err != nil {
			return err
		}
	}
	if err := c.props.DeleteProp(ctx, PropTickets); err != nil {
		return err
	}
	if len(ids) > 0 {
		c.log.Info("已取消续跑票据", "count", len(ids))
	}
	return nil
}

// Tracked 返回当前跟踪的票据 id（供 status 展示）。
func (c *continuations) Tracked(ctx context.Context) ([]string, error) {
	return c.tracked(ctx)
}

func (c *continuations) tracked(ctx context.Context) ([]string, error) {
	raw, ok, err := c.props.GetProp(ctx, PropTickets)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		// 清单损坏：宁可当作空清单并告警，也不能因此取消不属于自己的票据。
		c.log.Warn("票据清单损坏，按空处理", "raw", raw, "err", err)
		return nil, nil
	}
	return ids, nil
}
