package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/docark/internal/config"
	"github.com/John-Robertt/docark/internal/engine"
	"github.com/John-Robertt/docark/internal/state"
)

func newServeCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "常驻轮询到期票据，代替宿主平台的触发器在本地驱动续跑",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(config.CLIArgs{})
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, interval)
		},
	}
	cmd.Flags().DurationVarP(&interval, "interval", "i", 10*time.Second, "票据轮询间隔")
	return cmd
}

func serve(parent context.Context, cfg config.EffectiveConfig, interval time.Duration) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger()
	db, err := state.Open(cfg.StateDB)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Info("开始轮询续跑票据", "interval", interval, "state_db", cfg.StateDB)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		tk, err := db.ClaimDue(ctx, time.Now())
		if err != nil {
			return err
		}
		if tk == nil {
			select {
			case <-ctx.Done():
				log.Info("收到退出信号，停止轮询")
				return nil
			case <-ticker.C:
			}
			continue
		}

		if tk.Entry != engine.EntryRun {
			log.Warn("未知入口的票据，丢弃", "ticket", tk.ID, "entry", tk.Entry)
			continue
		}
		log.Info("票据到期，触发续跑", "ticket", tk.ID)
		if err := runOnce(ctx, cfg); err != nil {
			// 单次调用失败不拖垮轮询：下一张票据可能仍然有效。
			log.Error("续跑调用失败", "ticket", tk.ID, "err", err)
		}
	}
}
