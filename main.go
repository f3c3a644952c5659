package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"filehub/internal/app"
	"filehub/internal/config"
	"filehub/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const envFilePath = ".env"

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

func main() {
	envErr := godotenv.Load(envFilePath)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.App.IsProduction())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if envErr != nil {
		zlog.Info(".env file not found, using environment variables")
	}
	zlog.Info("configuration loaded", zap.String("env", cfg.App.Env), zap.String("storage", cfg.Storage.Backend))

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	application, err := app.New(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize service", logger.SafeError(err))
	}

	if err := application.Run(ctx); err != nil {
		zlog.Fatal("server error", logger.SafeError(err))
	}
}
