package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nguyentantai21042004/meeting-bot/internal/logger"
	"github.com/nguyentantai21042004/meeting-bot/internal/recorder"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	active []recorder.SessionInfo
	calls  []string
	// pending is a pipeline started elsewhere that Wait must see through.
	pending chan struct{}
}

func (f *fakeRecorder) Start(ctx context.Context, t recorder.Target) (*recorder.SessionInfo, error) {
	return nil, errors.New("not used")
}

func (f *fakeRecorder) Stop(ctx context.Context, guildID string) (*recorder.Result, error) {
	f.calls = append(f.calls, "stop "+guildID)
	return &recorder.Result{}, nil
}

func (f *fakeRecorder) Import(ctx context.Context, label string, data []byte) (*recorder.Result, error) {
	return nil, errors.New("not used")
}

func (f *fakeRecorder) Active() []recorder.SessionInfo { return f.active }

func (f *fakeRecorder) Wait(ctx context.Context) error {
	select {
	case <-f.pending:
		f.calls = append(f.calls, "wait")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestFinishRecordings(t *testing.T) {
	rec := &fakeRecorder{
		active:  []recorder.SessionInfo{{GuildID: "g1"}, {GuildID: "g2"}},
		pending: make(chan struct{}),
	}
	a := &App{Recorder: rec, logger: logger.Nop()}

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(rec.pending)
	}()
	a.finishRecordings(context.Background())

	require.Equal(t, []string{"stop g1", "stop g2", "wait"}, rec.calls)
}

func TestFinishRecordingsGivesUp(t *testing.T) {
	rec := &fakeRecorder{pending: make(chan struct{})}
	a := &App{Recorder: rec, logger: logger.Nop()}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	a.finishRecordings(ctx)

	require.Empty(t, rec.calls)
}
