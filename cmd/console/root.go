package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version 当前版本号
const Version = "0.1.0"

var cfgFile string

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:     "console",
	Short:   "游戏运营后台控制台服务",
	Version: Version,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yml", "配置文件路径")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
