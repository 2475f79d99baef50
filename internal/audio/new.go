package audio

import (
	"os"
	"time"

	"github.com/nguyentantai21042004/meeting-bot/internal/config"
	"github.com/nguyentantai21042004/meeting-bot/internal/logger"
	"github.com/nguyentantai21042004/meeting-bot/pkg/executor"
)

type implProcessor struct {
	binary   string
	tempDir  string
	timeout  time.Duration
	executor executor.Executor
	logger   logger.Logger
}

// New creates a new Processor instance
func New(cfg config.FFmpegConfig, tempDir string, exec executor.Executor, log logger.Logger) Processor {
	binary := cfg.BinaryPath
	if binary == "" {
		binary = "ffmpeg"
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &implProcessor{
		binary:   binary,
		tempDir:  tempDir,
		timeout:  cfg.Timeout(),
		executor: exec,
		logger:   log,
	}
}
