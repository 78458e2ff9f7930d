package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/nimasrn/order-import/internal/command"
	"github.com/nimasrn/order-import/internal/config"
	"github.com/nimasrn/order-import/internal/lock"
	"github.com/nimasrn/order-import/internal/repository"
	"github.com/nimasrn/order-import/internal/services"
	"github.com/nimasrn/order-import/pkg/logger"
	"github.com/nimasrn/order-import/pkg/pg"
	"github.com/nimasrn/order-import/pkg/prom"
	"github.com/nimasrn/order-import/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return command.Run(ctx, os.Args[1:], os.Stdout, os.Stderr, setup)
}

// setup loads the configuration and opens everything the command needs.
func setup(ctx context.Context, inv *command.Invocation) (command.Deps, func(), error) {
	if err := config.Load(argContainsEnvPath(os.Args[1:])); err != nil {
		return command.Deps{}, nil, err
	}
	cfg := config.Get()

	if err := logger.Configure(cfg.LogEnv); err != nil {
		return command.Deps{}, nil, err
	}
	logger.With("run_id", uuid.NewString(), "command", inv.Name)
	logger.Debug("starting", "version", version, "commit", commit, "date", date)

	host, _ := os.Hostname()
	if err := prom.Create(host, cfg.AppEnv, cfg.PromNamespace); err != nil {
		logger.Warn("failed creating metrics", "error", err)
	}

	dbConf := pg.Config{
		Driver:   cfg.DBDriver,
		User:     cfg.DBUser,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
	}
	db, err := pg.Open(dbConf, cfg.DBDebug)
	if err != nil {
		return command.Deps{}, nil, fmt.Errorf("connect %s database: %w", cfg.DBDriver, err)
	}

	locker, closeLocker, err := newLocker(cfg)
	if err != nil {
		_ = db.Close()
		return command.Deps{}, nil, fmt.Errorf("connect redis: %w", err)
	}

	teardown := func() {
		closeLocker()
		if err := db.Close(); err != nil {
			logger.Warn("failed closing database", "error", err)
		}
		pushMetrics(cfg.PromPushgatewayURL, cfg.AppName)
	}

	deps := command.Deps{
		Service: services.NewOrderImportService(
			repository.NewCustomerRepository(db),
			repository.NewOrderRepository(db),
			cfg.ImportBatchSize,
		),
		Locker:      locker,
		Migrate:     func(ctx context.Context) error { return pg.Migrate(dbConf) },
		AutoMigrate: cfg.DBAutoMigrate,
	}
	return deps, teardown, nil
}

func newLocker(cfg *config.Config) (lock.Locker, func(), error) {
	if cfg.RedisAddr == "" {
		return lock.Noop{}, func() {}, nil
	}

	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisKeyPrefix, &redis.Options{
		Addrs:      []string{cfg.RedisAddr},
		ClientName: cfg.AppName,
		DB:         cfg.RedisDatabase,
		Username:   cfg.RedisUsername,
		Password:   cfg.RedisPassword,
	})
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := redis.Close("default"); err != nil {
			logger.Warn("failed closing redis", "error", err)
		}
	}
	return lock.NewRedisLocker(redisAdap, lock.DefaultKey, cfg.LockTTL), closer, nil
}

func pushMetrics(url, job string) {
	if url == "" {
		return
	}
	if err := prom.Push(url, job); err != nil {
		logger.Warn("failed pushing metrics", "url", url, "error", err)
	}
}

func argContainsEnvPath(args []string) string {
	for _, v := range args {
		if strings.HasPrefix(v, "--env=") {
			s := strings.SplitN(v, "=", 2)
			if _, err := os.Stat(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	if _, err := os.Stat(".env"); err != nil {
		return ""
	}
	return ".env"
}
