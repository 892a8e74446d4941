package main

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"pagekit/config"
	dbbasic "pagekit/data/db/basic"
	ormbasic "pagekit/data/orm/basic"
	"pagekit/data/orm/repo"
	"pagekit/logging"
	"pagekit/paging/countcache"
)

// app 一次命令执行共享的依赖
type app struct {
	cfg    *config.Config
	logger logging.Logger
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		a          = &app{}
	)
	root := &cobra.Command{
		Use:           "pagekit",
		Short:         "Seed and page through a demo articles table",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cfg.NewLogger(cmd.ErrOrStderr()).
				WithFields(logging.String("request_id", uuid.NewString()), logging.String("command", cmd.Name()))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./pagekit.yaml)")
	root.AddCommand(newSeedCmd(a), newPageCmd(a))
	return root
}

// openRepo 打开数据库并建表，返回的 cleanup 负责释放连接与缓存客户端。
func (a *app) openRepo(ctx context.Context) (*repo.Repo[article], func(), error) {
	db, err := dbbasic.New(a.cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := db.ExecDDL(ctx, createArticles); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	closers := []io.Closer{db}
	opts := []repo.Option{
		repo.WithMaxPageSize(a.cfg.Paging.MaxPageSize),
		repo.WithLogger(a.logger),
	}
	cc := a.cfg.Paging.CountCache
	switch cc.Backend {
	case "memory":
		opts = append(opts, repo.WithCountCache(countcache.NewMemoryStore(cc.MaxSize), cc.TTL))
	case "redis":
		store := countcache.NewRedisStore(countcache.RedisConfig{Addr: cc.RedisAddr, DB: cc.RedisDB, KeyPrefix: cc.KeyPrefix})
		closers = append(closers, store)
		opts = append(opts, repo.WithCountCache(store, cc.TTL))
	}

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}
	r, err := repo.New(ormbasic.New(db), articleSchema, nil, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return r, cleanup, nil
}
