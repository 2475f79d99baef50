package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/meeting-bot/internal/logger"
	"github.com/nguyentantai21042004/meeting-bot/internal/recorder"
)

// Folders created inside the inbox. The watcher is not recursive, so files
// moved into them are not picked up again.
const (
	processingDir = "processing"
	archivedDir   = "archived"
	failedDir     = "failed"
)

// NewImporter returns an EventHandler that runs each inbox file through
// rec.Import. The file moves to processing/ while it runs, then to archived/
// on success or failed/ otherwise.
func NewImporter(rec recorder.Recorder, inboxDir string, log logger.Logger) (EventHandler, error) {
	for _, dir := range []string{processingDir, archivedDir, failedDir} {
		if err := os.MkdirAll(filepath.Join(inboxDir, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create inbox folder %s: %w", dir, err)
		}
	}

	return func(ctx context.Context, filePath string) error {
		name := filepath.Base(filePath)
		ctx = logger.WithFields(ctx, "file", name)

		working, err := move(filePath, filepath.Join(inboxDir, processingDir))
		if err != nil {
			return fmt.Errorf("move to processing: %w", err)
		}

		data, err := os.ReadFile(working)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		res, err := rec.Import(ctx, name, data)
		if err != nil {
			if _, mvErr := move(working, filepath.Join(inboxDir, failedDir)); mvErr != nil {
				log.Warn(ctx, "Failed to move %s to failed folder: %v", name, mvErr)
			}
			return err
		}

		if _, err := move(working, filepath.Join(inboxDir, archivedDir)); err != nil {
			log.Warn(ctx, "Failed to move %s to archived folder: %v", name, err)
		}
		log.Info(ctx, "Imported %s as %s (%d objects)", name, res.Name, len(res.Uploaded))
		return nil
	}, nil
}

func move(src, dir string) (string, error) {
	dst := filepath.Join(dir, filepath.Base(src))
	if err := os.Rename(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}
