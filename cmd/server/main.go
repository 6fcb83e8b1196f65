package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"miturno/internal/app"
	"miturno/internal/config"
	"miturno/internal/db"
	"miturno/internal/logger"
	"miturno/internal/server"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog := logger.New(cfg.Env, cfg.LogLevel)
	defer zlog.Sync()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("Failed to connect to db", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := db.NewMigrator(pool, zlog)
	if err != nil {
		zlog.Fatal("Failed to prepare migrations", zap.Error(err))
	}
	if err := migrator.Up(ctx); err != nil {
		zlog.Fatal("Failed to run migrations", zap.Error(err))
	}
	migrator.Close()

	appInstance := app.New(cfg, pool, zlog)

	reminders := app.NewReminders(appInstance)
	if err := reminders.Start(); err != nil {
		zlog.Fatal("Failed to start reminder job", zap.Error(err))
	}
	defer reminders.Stop()

	router := app.NewRouter(appInstance)

	if err := server.Run(router, cfg.Port, zlog); err != nil {
		zlog.Error("Server error", zap.Error(err))
	}
}
