package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// 全局 CLI 参数（persistent flags）。
var (
	flagConfig  string
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "docark",
		Short:         "按记录表逐行抓取 PDF 并归档，支持时间预算与续跑",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "配置文件路径（默认 ./docark.json）")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "输出调试日志")

	root.AddCommand(newRunCmd(), newServeCmd(), newStatusCmd(), newCancelCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "docark: %v\n", err)
		os.Exit(1)
	}
}
