package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nguyentantai21042004/meeting-bot/internal/app"
	"github.com/nguyentantai21042004/meeting-bot/internal/config"
	"github.com/nguyentantai21042004/meeting-bot/internal/logger"
)

const shutdownTimeout = 10 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to read .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info(ctx, "Meeting bot starting (%s/%s)", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "Storage: %s, bucket %s", cfg.Storage.Backend, cfg.Storage.Bucket)
	log.Info(ctx, "Summary: %s in %s", cfg.Summary.Provider, cfg.Summary.Language)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "Failed to initialize: %v", err)
		os.Exit(1)
	}

	if cfg.Paths.Inbox != "" {
		log.Info(ctx, "Watching inbox: %s", cfg.Paths.Inbox)
	}
	if cfg.HTTP.Addr != "" {
		log.Info(ctx, "Ops HTTP on %s", cfg.HTTP.Addr)
	}

	runErr := a.Run(ctx)
	if runErr != nil {
		log.Error(ctx, "Bot stopped: %v", runErr)
	} else {
		log.Info(ctx, "Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.Shutdown(shutdownCtx)
	log.Info(ctx, "Meeting bot stopped")

	if runErr != nil {
		os.Exit(1)
	}
}

// configPath picks $MEETING_BOT_CONFIG, else config.yaml when present.
// Without a file the bot runs on environment variables alone.
func configPath() string {
	if p := os.Getenv("MEETING_BOT_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}
