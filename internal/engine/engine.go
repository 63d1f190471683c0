// Package engine 实现时间受限、可续跑的逐行处理循环。
//
// 作业状态机：
//
//	FRESH --启动--> RUNNING --预算耗尽且有剩余--> SUSPENDED --票据触发--> RUNNING
//	RUNNING --无剩余--> DONE（终态：会话清空、票据全取消）
//
// “挂起”不是线程级的：进程整体退出，稍后由一个全新的进程实例续跑。
// 跨越边界的只有三样外部状态：会话、票据清单、逐行结果列。
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/John-Robertt/docark/internal/archive"
	"github.com/John-Robertt/docark/internal/classify"
	"github.com/John-Robertt/docark/internal/domain"
	"github.com/John-Robertt/docark/internal/extract"
	"github.com/John-Robertt/docark/internal/fetch"
	"github.com/John-Robertt/docark/internal/sheet"
)

// Config 是引擎的运行参数（启动时校验完毕，引擎不再做默认值判断）。
type Config struct {
	Worksheet string
	Columns   sheet.Columns
	StartRow  int
	Budget    time.Duration
	Delay     time.Duration
}

// Options 聚合引擎的全部外部协作者。
type Options struct {
	Records  sheet.RecordStore
	Archive  archive.Store
	Props    PropertyStore
	Sched    Scheduler
	Probe    *http.Client
	Page     *http.Client
	Artifact *http.Client
	Config   Config
	Logger   *slog.Logger
	Observer Observer
}

type Engine struct {
	records  sheet.RecordStore
	archive  archive.Store
	props    PropertyStore
	cont     *continuations
	probe    *http.Client
	page     *http.Client
	artifact *http.Client
	cfg      Config
	log      *slog.Logger
	obs      Observer
}

func New(o Options) *Engine {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		records:  o.Records,
		archive:  o.Archive,
		props:    o.Props,
		cont:     &continuations{props: o.Props, sched: o.Sched, log: logger},
		probe:    o.Probe,
		page:     o.Page,
		artifact: o.Artifact,
		cfg:      o.Config,
		log:      logger,
		obs:      o.Observer,
	}
}

// Run 执行一次调用：接上（或新建）会话，从起始行起逐行处理，
// 预算耗尽则排定续跑后退出，自然跑完则取消票据并清空会话。
//
// 行级失败全部降级为结果列里的失败值，循环继续；
// 只有会话失效与记录存储写失败会让整次调用出错返回。
func (e *Engine) Run(ctx context.Context) (domain.RunReport, error) {
	started := time.Now()
	rr := domain.RunReport{StartedAt: started}

	ws, resumed, err := e.resolveSession(ctx)
	if err != nil {
		return rr, err
	}
	rr.Worksheet = ws
	e.log.Info("作业开始", "worksheet", ws, "resumed", resumed, "budget", e.cfg.Budget)

	tracker := sheet.NewTracker(e.records, ws, e.cfg.Columns, e.cfg.StartRow)
	items, err := tracker.Items()
	if err != nil {
		return rr, err
	}
	if e.obs != nil {
		e.obs.OnStart(ws, len(items))
	}

	for i, it := range items {
		// 同一个检查点承担两头：上一项结束后的收尾检查 + 本项开始前的起步检查。
		if !WithinBudget(started, e.cfg.Budget) {
			id, serr := e.cont.Schedule(ctx, EntryRun, e.cfg.Delay)
			if serr != nil {
				return rr, serr
			}
			rr.Suspended = true
			remaining := len(items) - i
			if e.obs != nil {
				e.obs.OnSuspend(remaining, id)
			}
			e.log.Info("预算耗尽，挂起", "remaining", remaining, "ticket", id)
			break
		}

		oneStarted := time.Now()
		var res domain.ItemResult
		if it.Processed() {
			res = domain.ItemResult{Row: it.Row, Source: it.Source, Status: domain.StatusSkipped}
		} else {
			res, err = e.processItem(ctx, tracker, it)
			if err != nil {
				// 记录存储写失败：结果可能没落盘，继续跑会让恢复语义失真。
				return rr, err
			}
		}
		rr.Items = append(rr.Items, res)
		if e.obs != nil {
			e.obs.OnItemDone(i+1, len(items), res, time.Since(oneStarted))
		}
	}

	if !rr.Suspended {
		if err := e.cont.CancelAll(ctx); err != nil {
			return rr, err
		}
		if err := e.props.DeleteProp(ctx, PropSession); err != nil {
			return rr, err
		}
		e.log.Info("作业完成", "worksheet", ws)
	}

	rr.FinishedAt = time.Now()
	rr.Finalize()
	return rr, nil
}

// Cancel 是操作者的逃生门：取消全部自建票据并清空会话。
func (e *Engine) Cancel(ctx context.Context) error {
	if err := e.cont.CancelAll(ctx); err != nil {
		return err
	}
	return e.props.DeleteProp(ctx, PropSession)
}

// resolveSession 解析本次调用作用的工作表。
//
// 已有会话则沿用其工作表（票据触发的续跑进程没有任何“当时在处理哪个
// 集合”的环境信息，全靠这里）；会话指向的工作表已不可解析时记录错误、
// 清掉残会话并连同票据一起回收——否则续跑票据会对着一个死会话无限空转。
func (e *Engine) resolveSession(ctx context.Context) (worksheet string, resumed bool, err error) {
	ws, ok, err := e.props.GetProp(ctx, PropSession)
	if err != nil {
		return "", false, err
	}

	if ok {
		exists, err := e.worksheetExists(ws)
		if err != nil {
			return "", false, err
		}
		if !exists {
			e.log.Error("会话指向的工作表已不存在，放弃本次调用", "worksheet", ws)
			_ = e.cont.CancelAll(ctx)
			_ = e.props.DeleteProp(ctx, PropSession)
			return "", false, fmt.Errorf("%s：会话指向的工作表 %q 已不存在", domain.ErrCodeSessionInvalid, ws)
		}
		return ws, true, nil
	}

	// 全新作业：工作表来自配置，必须先确认存在再落会话。
	exists, err := e.worksheetExists(e.cfg.Worksheet)
	if err != nil {
		return "", false, err
	}
	if !exists {
		return "", false, fmt.Errorf("工作表不存在：%q", e.cfg.Worksheet)
	}
	if err := e.props.SetProp(ctx, PropSession, e.cfg.Worksheet); err != nil {
		return "", false, err
	}
	return e.cfg.Worksheet, false, nil
}

func (e *Engine) worksheetExists(name string) (bool, error) {
	names, err := e.records.Worksheets()
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// processItem 跑完一行的完整流水：分类 → （包装页）提取 → 下载校验 → 归档 → 落结果。
// 返回的 error 只代表记录存储写失败（对整次调用致命）；流水本身的失败
// 都已化为带失败值的 ItemResult。
func (e *Engine) processItem(ctx context.Context, tracker *sheet.Tracker, it domain.WorkItem) (domain.ItemResult, error) {
	res := domain.ItemResult{Row: it.Row, Source: it.Source}

	// 分类是临时判定：每次尝试重新算，不跨行、不跨续跑缓存。
	target := it.Source
	if classify.Classify(ctx, e.probe, it.Source) == classify.Wrapper {
		u, err := extract.Extract(ctx, e.page, it.Source)
		if err != nil {
			return e.recordFailure(tracker, res, domain.ErrCodeExtractFailed, err)
		}
		// 提取列先写、结果列后写：结果列必须是该行的最后一次写入。
		if werr := tracker.RecordExtracted(it.Row, u); werr != nil {
			return res, fmt.Errorf("%s：%w", domain.ErrCodeRecordFailed, werr)
		}
		res.Extracted = u
		target = u
	}

	data, err := fetch.Artifact(ctx, e.artifact, target)
	if err != nil {
		return e.recordFailure(tracker, res, domain.ErrCodeFetchFailed, err)
	}

	name := archive.FileName(target, time.Now())
	ref, err := e.archive.Put(ctx, name, data)
	if err != nil {
		return e.recordFailure(tracker, res, domain.ErrCodePersistFailed, fmt.Errorf("归档失败：%w", err))
	}

	if werr := tracker.RecordSuccess(it.Row, ref); werr != nil {
		return res, fmt.Errorf("%s：%w", domain.ErrCodeRecordFailed, werr)
	}
	res.Status = domain.StatusProcessed
	res.Reference = ref
	return res, nil
}

// recordFailure 把行级失败落到结果列。失败也是终态：写不进去才是真错误。
func (e *Engine) recordFailure(tracker *sheet.Tracker, res domain.ItemResult, code string, cause error) (domain.ItemResult, error) {
	res.Status = domain.StatusFailed
	res.ErrorCode = code
	res.ErrorMsg = cause.Error()
	if werr := tracker.RecordFailure(res.Row, cause.Error()); werr != nil {
		return res, fmt.Errorf("%s：%w", domain.ErrCodeRecordFailed, werr)
	}
	e.log.Warn("行处理失败", "row", res.Row, "code", code, "err", cause)
	return res, nil
}
