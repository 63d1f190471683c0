package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/docark/internal/config"
	"github.com/John-Robertt/docark/internal/engine"
	"github.com/John-Robertt/docark/internal/state"
)

func newCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "取消在途会话与全部自建续跑票据（已写入的逐行结果保留）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(config.CLIArgs{})
			if err != nil {
				return err
			}

			// 只动状态库，不碰工作簿与归档。
			db, err := state.Open(cfg.StateDB)
			if err != nil {
				return err
			}
			defer db.Close()

			e := engine.New(engine.Options{Props: db, Sched: db, Logger: newLogger()})
			if err := e.Cancel(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("已取消在途会话与续跑票据")
			return nil
		},
	}
}
