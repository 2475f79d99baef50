package audio

import (
	"context"
	"fmt"
	"os"
)

// makeWorkDir creates an isolated temp dir per call so concurrent sessions
// never share input files.
func (p *implProcessor) makeWorkDir(pattern string) (string, error) {
	dir, err := os.MkdirTemp(p.tempDir, pattern)
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	return dir, nil
}

// cleanupWorkDir removes a temp dir, logs warning if fails
func (p *implProcessor) cleanupWorkDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.logger.Warn(ctx, "Failed to cleanup temp dir %s: %v", dir, err)
	} else {
		p.logger.Debug(ctx, "Cleaned up temp dir: %s", dir)
	}
}

func writeTemp(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write temp input: %w", err)
	}
	return nil
}
