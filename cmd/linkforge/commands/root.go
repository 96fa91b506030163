package commands

import (
	"context"
	"fmt"
	"os"

	"linkforge/pkg/app"
	"linkforge/pkg/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// 全局应用实例，供子命令使用
	LF *app.App
)

var rootCmd = &cobra.Command{
	Use:           "linkforge",
	Short:         "LinkForge: crate link identity, symbol naming and final linking",
	SilenceUsage:  true,
	SilenceErrors: true,
	// PersistentPreRunE 在所有子命令执行前运行
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 测试里会预先注入 LF
		if LF != nil {
			return nil
		}
		var err error
		LF, err = app.NewApp()
		if err != nil {
			return fmt.Errorf("failed to initialize linkforge: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if LF == nil {
			return nil
		}
		return LF.Close()
	},
}

// Execute 是入口
func Execute() error {
	return rootCmd.Execute()
}

// openStores 给需要 crate store 或产物仓库的命令使用
func openStores(ctx context.Context) error {
	if LF == nil {
		return fmt.Errorf("app not initialized")
	}
	return LF.Open(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// 1. 全局参数 --config
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.lf/config.yaml or $HOME/.lf/config.yaml)")

	// 2. 其余全局参数绑定到 Viper，命令行优先于配置文件和环境变量
	flags := rootCmd.PersistentFlags()
	flags.String("target-os", "", "target platform (linux, macos, win32, freebsd, android); empty means host")
	flags.String("hash", "", "hash algorithm for crate metadata and symbol hashes (sha256, blake3)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("storage-path", "", "directory to store published artifacts")

	bindings := map[string]string{
		"target.os":      "target-os",
		"hash.algorithm": "hash",
		"log.level":      "log-level",
		"storage.path":   "storage-path",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Fprintln(os.Stderr, "Failed to bind flag:", err)
			os.Exit(1)
		}
	}
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, "Config error:", err)
		os.Exit(1)
	}
}
