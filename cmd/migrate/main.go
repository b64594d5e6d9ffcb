package main

import (
	"context"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/njprem/user_admin_backend/internal/config"
	"github.com/njprem/user_admin_backend/internal/logging"
	"github.com/njprem/user_admin_backend/internal/repository/postgres"
)

func main() {
	cfg := config.Load()
	logger, cleanup, err := logging.New(logging.Config{Level: cfg.LogLevel, Dev: cfg.LogDev})
	if err != nil {
		panic(err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}
	logger.Info("migrations applied")
}
