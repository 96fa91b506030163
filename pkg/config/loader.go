package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"linkforge/pkg/link"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀：LF_LINK_LINKER 对应 link.linker
const EnvPrefix = "LF"

var envReplacer = strings.NewReplacer(".", "_")

// Load 初始化 Viper 配置
// cfgFile: 可选，用户显式指定的配置文件路径
func Load(cfgFile string) error {
	// 1. 设置默认值 (Defaults)
	setDefaults()

	// 2. 配置搜索路径
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		// 搜索顺序：
		// 1. 当前目录
		viper.AddConfigPath(".")
		// 2. 当前目录下的 .lf
		viper.AddConfigPath(".lf")
		// 3. 用户主目录下的 .lf
		viper.AddConfigPath(filepath.Join(home, ".lf"))

		viper.SetConfigType("yaml")
		viper.SetConfigName("config") // 找 config.yaml
	}

	// 3. 读取环境变量 (LF_TARGET_OS 等)
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(envReplacer)
	viper.AutomaticEnv()

	// 4. 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		// 没找到配置文件不算错：还有默认值和环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logrus.Debug("no config file found, using defaults/env vars")
		} else {
			return fmt.Errorf("fatal error config file: %w", err)
		}
	} else {
		logrus.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	}

	return nil
}

func setDefaults() {
	// 链接器
	viper.SetDefault("link.linker", "")
	viper.SetDefault("link.runtime_lib", "lfrt")
	viper.SetDefault("link.runtime_lib_dir", link.DefaultRuntimeLibDir())
	viper.SetDefault("link.pre_args", []string{})
	viper.SetDefault("link.parallelism", 4)
	viper.SetDefault("link.save_temps", false)

	// 目标平台：空值表示宿主平台
	viper.SetDefault("target.os", "")

	// 哈希
	viper.SetDefault("hash.algorithm", "sha256")

	// crate store
	wd, _ := os.Getwd()
	viper.SetDefault("cstore.driver", "sqlite")
	viper.SetDefault("cstore.dsn", filepath.Join(wd, ".lf", "units.db"))

	// 数据库默认值 (postgres)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")

	// 产物仓库
	viper.SetDefault("storage.path", filepath.Join(wd, ".lf", "artifacts"))
	viper.SetDefault("storage.type", "disk")
	viper.SetDefault("storage.s3.region", "us-east-1")

	// 缓存
	viper.SetDefault("cache.redis_url", "")
	viper.SetDefault("cache.ttl", 24*time.Hour)

	viper.SetDefault("log.level", "info")
}
