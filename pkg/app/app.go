// pkg/app/app.go
package app

import (
	"context"
	"fmt"

	"linkforge/pkg/core"
	"linkforge/pkg/cstore"
	"linkforge/pkg/diag"
	"linkforge/pkg/link"
	"linkforge/pkg/pipeline"
	"linkforge/pkg/storage"
	"linkforge/pkg/storage/cache"
	"linkforge/pkg/storage/disk"
	"linkforge/pkg/storage/s3"
	"linkforge/pkg/target"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// App 是整个应用程序的依赖容器 (Dependency Container)
// 它持有所有“单例”服务
type App struct {
	Log    *logrus.Logger
	Sink   *diag.Sink
	Digest core.Digest
	OS     target.OS
	Linker *link.Linker

	// 以下两项由 Open 按需打开；只做命名/哈希的命令不需要数据库
	DB    *cstore.DB
	Repo  *cstore.Repository
	Store storage.Store

	Parallelism int
}

// NewApp 按 Viper 配置组装不依赖外部服务的部分
func NewApp() (*App, error) {
	// 1. 日志
	log, err := diag.NewLogger(viper.GetString("log.level"))
	if err != nil {
		return nil, err
	}
	sink := diag.NewSink(log)

	// 2. 哈希算法
	d, err := core.NewDigest(viper.GetString("hash.algorithm"))
	if err != nil {
		return nil, err
	}

	// 3. 目标平台
	os := target.Host()
	if name := viper.GetString("target.os"); name != "" {
		if os, err = target.ParseOS(name); err != nil {
			return nil, err
		}
	}

	// 4. 链接器
	linker := link.NewLinker(link.ExecRunner{}, LinkOptions(), sink, log)

	return &App{
		Log:         log,
		Sink:        sink,
		Digest:      d,
		OS:          os,
		Linker:      linker,
		Parallelism: viper.GetInt("link.parallelism"),
	}, nil
}

// LinkOptions 读取 link.* 配置
func LinkOptions() link.Options {
	return link.Options{
		Linker:        viper.GetString("link.linker"),
		RuntimeLib:    viper.GetString("link.runtime_lib"),
		RuntimeLibDir: viper.GetString("link.runtime_lib_dir"),
		PreArgs:       viper.GetStringSlice("link.pre_args"),
	}
}

// Open 打开 crate store 和产物仓库
func (a *App) Open(ctx context.Context) error {
	if a.Repo == nil {
		db, err := cstore.NewDB(ctx, cstoreConfig())
		if err != nil {
			return fmt.Errorf("failed to open crate store: %w", err)
		}
		a.DB = db
		a.Repo = cstore.NewRepository(db)
	}
	if a.Store == nil {
		store, err := initStore(ctx, a.Log)
		if err != nil {
			return fmt.Errorf("failed to init storage: %w", err)
		}
		a.Store = store
	}
	return nil
}

// Pipeline 返回绑定了当前服务的流水线；未 Open 时没有 crate store 和产物仓库
func (a *App) Pipeline() *pipeline.Pipeline {
	return pipeline.New(pipeline.Options{
		Digest: a.Digest,
		Linker: a.Linker,
		Repo:   a.Repo,
		Store:  a.Store,
		OS:     a.OS,
		Sink:   a.Sink,
		Log:    a.Log,
	})
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

func cstoreConfig() cstore.Config {
	return cstore.Config{
		Driver:   viper.GetString("cstore.driver"),
		DSN:      viper.GetString("cstore.dsn"),
		Host:     viper.GetString("database.host"),
		Port:     viper.GetInt("database.port"),
		User:     viper.GetString("database.user"),
		Password: viper.GetString("database.password"),
		DBName:   viper.GetString("database.dbname"),
		SSLMode:  viper.GetString("database.sslmode"),
		Debug:    viper.GetString("log.level") == "debug",
	}
}

// initStore 按 storage.type 创建产物仓库，配置了 cache.redis_url 时套一层 Redis
func initStore(ctx context.Context, log logrus.FieldLogger) (storage.Store, error) {
	var store storage.Store

	switch t := viper.GetString("storage.type"); t {
	case "", "disk":
		path := viper.GetString("storage.path")
		if path == "" {
			return nil, fmt.Errorf("storage path not set")
		}
		a, err := disk.NewAdapter(path)
		if err != nil {
			return nil, err
		}
		store = a
	case "s3":
		cfg := s3.Config{
			Endpoint:        viper.GetString("storage.s3.endpoint"),
			Region:          viper.GetString("storage.s3.region"),
			Bucket:          viper.GetString("storage.s3.bucket"),
			AccessKeyID:     viper.GetString("storage.s3.access_key"),
			SecretAccessKey: viper.GetString("storage.s3.secret_key"),
		}
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 bucket is required")
		}
		a, err := s3.NewAdapter(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		store = a
	default:
		return nil, fmt.Errorf("unsupported storage type %q", t)
	}

	if url := viper.GetString("cache.redis_url"); url != "" {
		cached, err := cache.NewCachedStore(store, cache.Config{
			RedisURL: url,
			TTL:      viper.GetDuration("cache.ttl"),
		}, log)
		if err != nil {
			return nil, err
		}
		store = cached
	}
	return store, nil
}
