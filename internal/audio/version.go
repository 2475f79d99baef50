package audio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/meeting-bot/pkg/executor"
)

const versionTimeout = 10 * time.Second

// Version runs `binary -version` and returns its first line. It fails when
// ffmpeg is missing.
func Version(ctx context.Context, exec executor.Executor, binary string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	out, err := exec.Execute(ctx, binary, "-hide_banner", "-version")
	if err != nil {
		return "", fmt.Errorf("ffmpeg not usable at %q: %w", binary, err)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if line == "" {
		return "", fmt.Errorf("ffmpeg at %q printed no version", binary)
	}
	return line, nil
}
