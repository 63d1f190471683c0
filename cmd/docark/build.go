package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/John-Robertt/docark/internal/archive"
	"github.com/John-Robertt/docark/internal/config"
	"github.com/John-Robertt/docark/internal/engine"
	"github.com/John-Robertt/docark/internal/infra/httpx"
	"github.com/John-Robertt/docark/internal/sheet"
	"github.com/John-Robertt/docark/internal/state"
)

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	// stdout 留给 RunReport JSON，日志一律走 stderr。
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig(cli config.CLIArgs) (config.EffectiveConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.EffectiveConfig{}, err
	}
	cli.ConfigPath = flagConfig
	return config.LoadEffective(cwd, cli)
}

// deps 聚合一次调用需要打开的全部外部资源。
type deps struct {
	cfg      config.EffectiveConfig
	workbook *sheet.XLSX
	db       *state.DB
	store    archive.Store
	probe    *http.Client
	page     *http.Client
	artifact *http.Client
}

func openDeps(ctx context.Context, cfg config.EffectiveConfig, log *slog.Logger) (d *deps, err error) {
	d = &deps{cfg: cfg}
	defer func() {
		if err != nil {
			d.Close()
		}
	}()

	if d.workbook, err = sheet.OpenXLSX(cfg.Workbook); err != nil {
		return nil, fmt.Errorf("打开工作簿失败：%w", err)
	}
	if d.db, err = state.Open(cfg.StateDB); err != nil {
		return nil, fmt.Errorf("打开状态库失败：%w", err)
	}
	if d.store, err = openArchive(ctx, cfg, log); err != nil {
		return nil, err
	}
	if d.probe, err = httpx.NewProbeClient(cfg.ProxyURL); err != nil {
		return nil, err
	}
	if d.page, err = httpx.NewPageClient(cfg.ProxyURL); err != nil {
		return nil, err
	}
	if d.artifact, err = httpx.NewArtifactClient(cfg.ProxyURL); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *deps) Close() {
	if d.workbook != nil {
		_ = d.workbook.Close()
	}
	if d.db != nil {
		_ = d.db.Close()
	}
}

func (d *deps) newEngine(log *slog.Logger, obs engine.Observer) *engine.Engine {
	return engine.New(engine.Options{
		Records:  d.workbook,
		Archive:  d.store,
		Props:    d.db,
		Sched:    d.db,
		Probe:    d.probe,
		Page:     d.page,
		Artifact: d.artifact,
		Config: engine.Config{
			Worksheet: d.cfg.Worksheet,
			Columns:   d.cfg.Columns,
			StartRow:  d.cfg.StartRow,
			Budget:    d.cfg.Budget,
			Delay:     d.cfg.Delay,
		},
		Logger:   log,
		Observer: obs,
	})
}

func openArchive(ctx context.Context, cfg config.EffectiveConfig, log *slog.Logger) (archive.Store, error) {
	switch cfg.ArchiveKind {
	case "dir":
		store, err := archive.NewDirStore(cfg.ArchiveDir)
		if err != nil {
			return nil, fmt.Errorf("初始化归档目录失败：%w", err)
		}
		return store, nil
	case "s3":
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.ArchiveRegion != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.ArchiveRegion))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("加载 AWS 配置失败：%w", err)
		}
		store := archive.NewS3Store(s3.NewFromConfig(awsCfg), cfg.ArchiveBucket, cfg.ArchivePrefix)
		// 启动即验桶：跑了半张表才发现桶名写错，代价太大。
		if err := store.CheckBucket(ctx); err != nil {
			return nil, fmt.Errorf("归档桶 %q 不可用：%w", cfg.ArchiveBucket, err)
		}
		log.Debug("归档桶可用", "bucket", cfg.ArchiveBucket, "prefix", cfg.ArchivePrefix)
		return store, nil
	default:
		return nil, fmt.Errorf("未知的归档类型 %q", cfg.ArchiveKind)
	}
}
