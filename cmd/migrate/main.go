package main

import (
	"context"
	"flag"
	"os"

	"github.com/hamiddiallo/ecommerce/internal/config"
	"github.com/hamiddiallo/ecommerce/internal/infra/db"
	"github.com/hamiddiallo/ecommerce/internal/infra/migrations"
	"github.com/hamiddiallo/ecommerce/internal/logger"
)

// 例: go run ./cmd/migrate -cmd=down-to 20260101000000
func main() {
	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|redo|reset|up-to|down-to")
	flag.Parse()

	ctx := context.Background()
	log := logger.New(logger.Options{ServiceName: "ecommerce-migrate"})

	if err := run(ctx, *cmd, flag.Args()); err != nil {
		log.Error(ctx, "migrate failed", err)
		os.Exit(1)
	}
	log.InfoFields(ctx, "migrate done", map[string]any{"cmd": *cmd})
}

func run(ctx context.Context, command string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	gormDB, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return migrations.Run(ctx, sqlDB, command, args...)
}
