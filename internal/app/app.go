package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/nguyentantai21042004/meeting-bot/internal/audio"
	"github.com/nguyentantai21042004/meeting-bot/internal/bot"
	"github.com/nguyentantai21042004/meeting-bot/internal/config"
	"github.com/nguyentantai21042004/meeting-bot/internal/httpapi"
	"github.com/nguyentantai21042004/meeting-bot/internal/logger"
	"github.com/nguyentantai21042004/meeting-bot/internal/output"
	"github.com/nguyentantai21042004/meeting-bot/internal/recorder"
	"github.com/nguyentantai21042004/meeting-bot/internal/storage"
	"github.com/nguyentantai21042004/meeting-bot/internal/transcription"
	"github.com/nguyentantai21042004/meeting-bot/internal/watcher"
	"github.com/nguyentantai21042004/meeting-bot/pkg/executor"
)

// App holds every long-lived component, built once from the configuration.
type App struct {
	Recorder recorder.Recorder
	Bot      *bot.Bot
	Watcher  watcher.Watcher // nil unless paths.inbox is set
	HTTP     *httpapi.Server // nil unless http.addr is set

	logger logger.Logger
}

func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	format, err := audio.ParseFormat(cfg.FFmpeg.OutputFormat)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Paths.Temp, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	exec := executor.New()
	version, err := audio.Version(ctx, exec, cfg.FFmpeg.BinaryPath)
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "Using %s", version)
	proc := audio.New(cfg.FFmpeg, cfg.Paths.Temp, exec, log)

	trans, err := transcription.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("create transcription service: %w", err)
	}

	store, err := storage.NewObjectStore(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create object store: %w", err)
	}
	uploads := storage.New(store, cfg.Storage.Timeout(), log)

	session, err := bot.NewSession(cfg.Discord.Token)
	if err != nil {
		return nil, err
	}

	rec := recorder.New(recorder.Options{
		Gateway:     bot.NewVoiceGateway(session, log),
		Audio:       proc,
		Transcriber: trans,
		Storage:     uploads,
		Logger:      log,
		Format:      format,
		Language:    cfg.Summary.Language,
		TeamReport:  cfg.Summary.TeamReport,
	})

	handler := bot.NewHandler(rec, proc, output.NewFormatter(), &http.Client{Timeout: cfg.Storage.Timeout()}, log)

	a := &App{
		Recorder: rec,
		Bot:      bot.New(session, handler, cfg.Discord.GuildID, log),
		logger:   log,
	}

	if cfg.Paths.Inbox != "" {
		if err := os.MkdirAll(cfg.Paths.Inbox, 0o755); err != nil {
			return nil, fmt.Errorf("create inbox: %w", err)
		}
		importer, err := watcher.NewImporter(rec, cfg.Paths.Inbox, log)
		if err != nil {
			return nil, err
		}
		a.Watcher, err = watcher.New(cfg.Paths.Inbox, importer, log, cfg.Performance.MaxConcurrent)
		if err != nil {
			return nil, err
		}
	}

	if cfg.HTTP.Addr != "" {
		a.HTTP = httpapi.New(cfg.HTTP.Addr, rec, log)
	}

	return a, nil
}

// Run opens the Discord gateway and the optional watcher and ops server,
// then blocks until ctx is done or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if err := a.Bot.Open(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 2)
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("%s: %w", name, err)
			}
		}()
	}
	if a.Watcher != nil {
		run("watcher", a.Watcher.Start)
	}
	if a.HTTP != nil {
		run("http", a.HTTP.Run)
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}
	cancel()
	wg.Wait()
	return err
}

// Shutdown finishes every active recording so captured audio is not lost,
// waits for pipelines already running, then closes the Discord session.
func (a *App) Shutdown(ctx context.Context) {
	if a.Watcher != nil {
		if err := a.Watcher.Stop(); err != nil {
			a.logger.Warn(ctx, "Failed to stop watcher: %v", err)
		}
	}
	a.finishRecordings(ctx)
	if err := a.Bot.Close(); err != nil {
		a.logger.Warn(ctx, "Failed to close Discord session: %v", err)
	}
}

func (a *App) finishRecordings(ctx context.Context) {
	for _, s := range a.Recorder.Active() {
		sctx := logger.WithFields(ctx, "guild", s.GuildID, "meeting", s.Name)
		a.logger.Info(sctx, "Finishing recording before shutdown")
		if _, err := a.Recorder.Stop(sctx, s.GuildID); err != nil {
			a.logger.Error(sctx, "Failed to finish recording: %v", err)
		}
	}
	if err := a.Recorder.Wait(ctx); err != nil {
		a.logger.Error(ctx, "Gave up waiting for running pipelines: %v", err)
	}
}
