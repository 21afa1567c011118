package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hamiddiallo/ecommerce/internal/config"
	"github.com/hamiddiallo/ecommerce/internal/infra/cache"
	"github.com/hamiddiallo/ecommerce/internal/infra/db"
	"github.com/hamiddiallo/ecommerce/internal/infra/migrations"
	"github.com/hamiddiallo/ecommerce/internal/infra/storage"
	"github.com/hamiddiallo/ecommerce/internal/logger"
	"github.com/hamiddiallo/ecommerce/internal/metrics"
	"github.com/hamiddiallo/ecommerce/internal/server"
	"github.com/hamiddiallo/ecommerce/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "ecommerce-api"}).Error(ctx, "config load failed", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "ecommerce-api",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server exited", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	//DB接続
	gormDB, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.DBAutoMigrate {
		if err := migrations.Up(ctx, sqlDB); err != nil {
			return err
		}
		log.Info(ctx, "migrations applied")
	}

	//Redis（任意）。無ければチェックアウトのロックなし
	var redisClient *cache.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	} else {
		log.Warn(ctx, "REDIS_URL not set; checkout lock disabled")
	}

	//画像の保存先
	var files usecase.FileStorage
	if cfg.CloudinaryURL != "" {
		files, err = storage.NewCloudinaryStorage(cfg.CloudinaryURL, "")
	} else {
		files, err = storage.NewLocalStorage(cfg.UploadDir)
	}
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := server.New(cfg, log, server.Deps{
		DB:       gormDB,
		Redis:    redisClient,
		Storage:  files,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
	})
	if err := s.EnsureAdmin(ctx); err != nil {
		return err
	}

	return s.Start(ctx)
}
