package recorder

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nguyentantai21042004/meeting-bot/internal/audio"
	"github.com/nguyentantai21042004/meeting-bot/internal/logger"
	"github.com/nguyentantai21042004/meeting-bot/internal/meeting"
	"github.com/nguyentantai21042004/meeting-bot/internal/storage"
	"github.com/nguyentantai21042004/meeting-bot/internal/transcription"
)

const (
	defaultJoinTimeout  = 15 * time.Second
	defaultDrainTimeout = 5 * time.Second
	// Whisper rejects uploads over 25 MB.
	defaultMaxTranscribeBytes = 24 << 20
)

// Options carries the collaborators and settings of a Recorder.
type Options struct {
	Gateway     VoiceGateway
	Audio       audio.Processor
	Transcriber transcription.Service
	Storage     storage.Service
	Logger      logger.Logger

	Format     audio.Format
	Language   string
	TeamReport bool

	JoinTimeout time.Duration
	// MaxTranscribeBytes is the largest speech file sent in one request;
	// longer meetings are transcribed in segments.
	MaxTranscribeBytes int
	Now                func() time.Time
	NewID              func() string
}

type implRecorder struct {
	gateway     VoiceGateway
	audio       audio.Processor
	transcriber transcription.Service
	storage     storage.Service
	logger      logger.Logger

	format        audio.Format
	language      string
	teamReport    bool
	joinTimeout   time.Duration
	maxTranscribe int
	now           func() time.Time
	newID         func() string
	namer         *meeting.Namer

	mu       sync.Mutex
	sessions map[string]*session
	// running counts pipelines in flight; idle is closed when it drops to 0.
	running int
	idle    chan struct{}
}

// New creates a Recorder. Zero-valued settings fall back to defaults.
func New(opts Options) Recorder {
	r := &implRecorder{
		gateway:       opts.Gateway,
		audio:         opts.Audio,
		transcriber:   opts.Transcriber,
		storage:       opts.Storage,
		logger:        opts.Logger,
		format:        opts.Format,
		language:      opts.Language,
		teamReport:    opts.TeamReport,
		joinTimeout:   opts.JoinTimeout,
		maxTranscribe: opts.MaxTranscribeBytes,
		now:           opts.Now,
		newID:         opts.NewID,
		sessions:      make(map[string]*session),
	}
	if r.logger == nil {
		r.logger = logger.Nop()
	}
	if r.format == "" {
		r.format = audio.FormatMP3
	}
	if r.language == "" {
		r.language = "th"
	}
	if r.joinTimeout <= 0 {
		r.joinTimeout = defaultJoinTimeout
	}
	if r.maxTranscribe <= 0 {
		r.maxTranscribe = defaultMaxTranscribeBytes
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.newID == nil {
		r.newID = newSessionID
	}
	r.namer = meeting.NewNamer(r.now)
	return r
}

func (r *implRecorder) Active() []SessionInfo {
	r.mu.Lock()
	list := make([]*session, 0, len(r.sessions))
	for _, s := range r.sessions {
		list = append(list, s)
	}
	r.mu.Unlock()

	infos := make([]SessionInfo, 0, len(list))
	for _, s := range list {
		if !s.active() {
			continue
		}
		infos = append(infos, s.info())
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].StartedAt.Equal(infos[j].StartedAt) {
			return infos[i].GuildID < infos[j].GuildID
		}
		return infos[i].StartedAt.Before(infos[j].StartedAt)
	})
	return infos
}

// register reserves the guild slot before the voice join so a concurrent
// Start for the same guild fails fast.
func (r *implRecorder) register(target Target) (*session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[target.GuildID]; ok {
		return nil, ErrAlreadyRecording
	}
	name, startedAt := r.namer.Next()
	s := newSession(r.newID(), name, target, startedAt)
	r.sessions[target.GuildID] = s
	return s, nil
}

func (r *implRecorder) unregister(guildID string, s *session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[guildID] == s {
		delete(r.sessions, guildID)
	}
}

// take removes an active session from the registry. A session whose voice
// join is still in flight is not active and stays put.
func (r *implRecorder) take(guildID string) (*session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[guildID]
	if !ok || !s.active() {
		return nil, false
	}
	delete(r.sessions, guildID)
	return s, true
}

// begin marks a pipeline as running. The returned func marks it done.
func (r *implRecorder) begin() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running == 0 {
		r.idle = make(chan struct{})
	}
	r.running++
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.running--
		if r.running == 0 {
			close(r.idle)
		}
	}
}

func (r *implRecorder) Wait(ctx context.Context) error {
	r.mu.Lock()
	if r.running == 0 {
		r.mu.Unlock()
		return nil
	}
	idle := r.idle
	r.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// background detaches work that must finish, the receive loop and the
// pipeline, from the caller's cancellation.
func background(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
