package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/docark/internal/config"
	"github.com/John-Robertt/docark/internal/domain"
	"github.com/John-Robertt/docark/internal/engine"
	"github.com/John-Robertt/docark/internal/sheet"
	"github.com/John-Robertt/docark/internal/state"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "展示在途会话、续跑票据与逐行进度",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(config.CLIArgs{})
			if err != nil {
				return err
			}
			return printStatus(cmd.Context(), cfg)
		},
	}
}

func printStatus(ctx context.Context, cfg config.EffectiveConfig) error {
	bold := color.New(color.Bold).SprintFunc()
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()

	db, err := state.Open(cfg.StateDB)
	if err != nil {
		return err
	}
	defer db.Close()

	ws := cfg.Worksheet
	session, live, err := db.GetProp(ctx, engine.PropSession)
	if err != nil {
		return err
	}
	if live {
		ws = session
		fmt.Printf("%s %s（续跑中）\n", bold("会话："), warn(session))
	} else {
		fmt.Printf("%s 无（下次 run 将处理 %q）\n", bold("会话："), ws)
	}

	tickets, err := db.ListTickets(ctx)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		fmt.Printf("%s 无\n", bold("票据："))
	}
	for _, tk := range tickets {
		fmt.Printf("%s %s 入口 %s 触发于 %s\n",
			bold("票据："), tk.ID, tk.Entry, tk.FireAt.Local().Format(time.RFC3339))
	}

	wb, err := sheet.OpenXLSX(cfg.Workbook)
	if err != nil {
		return err
	}
	defer wb.Close()

	items, err := sheet.NewTracker(wb, ws, cfg.Columns, cfg.StartRow).Items()
	if err != nil {
		return err
	}
	var done, failed, pending int
	for _, it := range items {
		switch {
		case domain.IsFailureValue(it.Result):
			failed++
		case it.Processed():
			done++
		default:
			pending++
		}
	}
	fmt.Printf("%s 共 %d 行：%s 完成，%s 失败，%s 待处理\n",
		bold("进度："), len(items), ok(done), bad(failed), warn(pending))
	return nil
}
