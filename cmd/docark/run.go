package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/docark/internal/config"
	"github.com/John-Robertt/docark/internal/domain"
)

var flagWorksheet string

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "执行一次调用：处理未完成的行，预算耗尽则排定续跑",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(config.CLIArgs{
				Worksheet:    flagWorksheet,
				WorksheetSet: cmd.Flags().Changed("worksheet"),
			})
			if err != nil {
				return err
			}
			return runOnce(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&flagWorksheet, "worksheet", "w", "", "工作表名（覆盖配置文件；续跑时以已持久化的会话为准）")
	return cmd
}

func runOnce(parent context.Context, cfg config.EffectiveConfig) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger()
	d, err := openDeps(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()

	rr, err := d.newEngine(log, newProgress()).Run(ctx)
	if err != nil {
		return err
	}
	rr.Workbook = d.workbook.Path()

	// 对外稳定输出：stdout 上只有这份 JSON。
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rr); err != nil {
		return err
	}
	printSummary(rr)
	return nil
}

func printSummary(rr domain.RunReport) {
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(os.Stderr, "处理 %s 跳过 %s 失败 %s 耗时 %s\n",
		ok(rr.Summary.Processed),
		warn(rr.Summary.Skipped),
		bad(rr.Summary.Failed),
		rr.FinishedAt.Sub(rr.StartedAt).Round(time.Millisecond),
	)
	if rr.Suspended {
		fmt.Fprintf(os.Stderr, "%s 时间预算耗尽，已排定续跑\n", warn("挂起："))
	}
}
