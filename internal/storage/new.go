package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/meeting-bot/internal/config"
	"github.com/nguyentantai21042004/meeting-bot/internal/logger"
)

type implService struct {
	store   ObjectStore
	timeout time.Duration
	logger  logger.Logger
}

// New wraps an ObjectStore with per-upload timeouts, logging and typed errors.
func New(store ObjectStore, timeout time.Duration, log logger.Logger) Service {
	return &implService{
		store:   store,
		timeout: timeout,
		logger:  log,
	}
}

// NewObjectStore builds the backend selected by cfg.Backend.
func NewObjectStore(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (ObjectStore, error) {
	switch cfg.Backend {
	case "", "supabase":
		return NewSupabaseStore(cfg.URL, cfg.Key, cfg.Bucket), nil
	case "s3":
		return NewS3Store(ctx, cfg, log)
	case "local":
		return NewLocalStore(cfg.URL, cfg.Bucket)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
