package bot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/nguyentantai21042004/meeting-bot/internal/audio"
	"github.com/nguyentantai21042004/meeting-bot/internal/logger"
	"github.com/nguyentantai21042004/meeting-bot/internal/meeting"
	"github.com/nguyentantai21042004/meeting-bot/internal/recorder"
	"github.com/nguyentantai21042004/meeting-bot/internal/storage"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	startTarget recorder.Target
	startErr    error
	stopRes     *recorder.Result
	stopErr     error
	stopCtxErr  error
}

func (f *fakeRecorder) Start(ctx context.Context, t recorder.Target) (*recorder.SessionInfo, error) {
	f.startTarget = t
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &recorder.SessionInfo{GuildID: t.GuildID, ChannelID: t.ChannelID}, nil
}

func (f *fakeRecorder) Stop(ctx context.Context, guildID string) (*recorder.Result, error) {
	f.stopCtxErr = ctx.Err()
	return f.stopRes, f.stopErr
}

func (f *fakeRecorder) Import(ctx context.Context, label string, data []byte) (*recorder.Result, error) {
	return nil, errors.New("not used")
}

func (f *fakeRecorder) Active() []recorder.SessionInfo { return nil }

func (f *fakeRecorder) Wait(ctx context.Context) error { return nil }

type fakeAudio struct {
	op       string
	in       []byte
	start    time.Duration
	duration time.Duration
	err      error
}

func (a *fakeAudio) Mix(ctx context.Context, streams map[string][]byte, format audio.Format) ([]byte, error) {
	return nil, errors.New("not used")
}

func (a *fakeAudio) Convert(ctx context.Context, data []byte, format audio.Format) ([]byte, error) {
	a.op, a.in = "convert", data
	return []byte("mp3"), a.err
}

func (a *fakeAudio) PrepareForTranscription(ctx context.Context, data []byte) ([]byte, error) {
	return nil, errors.New("not used")
}

func (a *fakeAudio) ExtractSegment(ctx context.Context, data []byte, start, duration time.Duration, format audio.Format) ([]byte, error) {
	a.op, a.in, a.start, a.duration = "segment", data, start, duration
	return []byte("mp3"), a.err
}

type fakeReplier struct {
	responses []string
	deferred  bool
	followups []string
	file      string
	fileData  []byte
}

func (r *fakeReplier) Respond(ctx context.Context, content string) error {
	r.responses = append(r.responses, content)
	return nil
}

func (r *fakeReplier) Defer(ctx context.Context) error {
	r.deferred = true
	return nil
}

func (r *fakeReplier) Followup(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.followups = append(r.followups, content)
	return nil
}

func (r *fakeReplier) FollowupFile(ctx context.Context, content, filename string, data []byte) error {
	r.file, r.fileData = filename, data
	return nil
}

var inv = Invocation{GuildID: "g1", TextChannelID: "t1", UserID: "u1", VoiceChannelID: "v1"}

func newTestHandler(rec *fakeRecorder, proc *fakeAudio) Handler {
	return NewHandler(rec, proc, nil, nil, logger.Nop())
}

func TestStartCommand(t *testing.T) {
	rec := &fakeRecorder{}
	r := &fakeReplier{}

	newTestHandler(rec, &fakeAudio{}).Start(context.Background(), inv, r)

	require.Equal(t, recorder.Target{GuildID: "g1", ChannelID: "v1", TextChannelID: "t1"}, rec.startTarget)
	require.Len(t, r.responses, 1)
	require.Contains(t, r.responses[0], "Recording started")
}

func TestStartCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not in voice", recorder.ErrNotInVoice, "not in a voice channel"},
		{"already recording", recorder.ErrAlreadyRecording, "Already recording"},
		{"join failure", errors.New("gateway timeout"), "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeReplier{}
			newTestHandler(&fakeRecorder{startErr: tt.err}, &fakeAudio{}).Start(context.Background(), inv, r)
			require.Len(t, r.responses, 1)
			require.Contains(t, r.responses[0], tt.want)
		})
	}
}

func TestStopCommand(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	rec := &fakeRecorder{stopRes: &recorder.Result{
		Name:         "meeting_20250101_100000",
		Source:       meeting.SourceDiscord,
		StartedAt:    start,
		EndedAt:      start.Add(90 * time.Second),
		Participants: []string{"u1"},
		Transcript:   "hello",
		Summary:      strings.Repeat("s", 4500),
		Uploaded:     []string{"a", "b", "c", "d"},
	}}
	r := &fakeReplier{}

	newTestHandler(rec, &fakeAudio{}).Stop(context.Background(), inv, r)

	require.True(t, r.deferred)
	require.Empty(t, r.responses)
	require.Contains(t, r.followups[0], "1m 30s")
	require.Contains(t, r.followups[1], "Processing complete")
	// Summary of 4500 characters plus header is split into three messages.
	require.Len(t, r.followups, 5)
	for _, msg := range r.followups {
		require.LessOrEqual(t, len([]rune(msg)), maxMessageLen)
	}
}

func TestStopCommandWithoutSession(t *testing.T) {
	r := &fakeReplier{}

	newTestHandler(&fakeRecorder{stopErr: recorder.ErrNoActiveSession}, &fakeAudio{}).Stop(context.Background(), inv, r)

	require.Equal(t, []string{"❌ Not recording in this server"}, r.followups)
}

func TestStopCommandSurvivesCancellation(t *testing.T) {
	rec := &fakeRecorder{stopRes: &recorder.Result{Name: "m", Uploaded: []string{"a"}}}
	r := &fakeReplier{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	newTestHandler(rec, &fakeAudio{}).Stop(ctx, inv, r)

	require.NoError(t, rec.stopCtxErr)
	require.Len(t, r.followups, 2)
	require.Contains(t, r.followups[1], "Processing complete")
}

func TestStopCommandPartialUpload(t *testing.T) {
	res := &recorder.Result{Name: "m", Uploaded: []string{"m/individuals/u1.mp3"}}
	rec := &fakeRecorder{
		stopRes: res,
		stopErr: &recorder.StageError{
			Stage:  recorder.StageUpload,
			Err:    &storage.StorageError{Key: "m/meeting_mix.mp3", Err: errors.New("503")},
			Result: res,
		},
	}
	r := &fakeReplier{}

	newTestHandler(rec, &fakeAudio{}).Stop(context.Background(), inv, r)

	require.Len(t, r.followups, 2)
	require.Contains(t, r.followups[0], "Recording stopped")
	require.Contains(t, r.followups[1], "m/individuals/u1.mp3")
}

func TestProcessAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/a/call.wav" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("RIFF"))
	}))
	defer srv.Close()

	tests := []struct {
		name     string
		req      ProcessAudioRequest
		wantOp   string
		wantFile string
	}{
		{
			name:     "convert whole file",
			req:      ProcessAudioRequest{File: Attachment{URL: srv.URL + "/a/call.wav", Filename: "call.wav", ContentType: "audio/wav"}},
			wantOp:   "convert",
			wantFile: "converted_call.mp3",
		},
		{
			name:     "extract segment",
			req:      ProcessAudioRequest{File: Attachment{URL: srv.URL + "/a/call.wav", Filename: "call.wav", ContentType: "audio/wav"}, Start: 1.5, Duration: 10},
			wantOp:   "segment",
			wantFile: "segment_1.5s_10s.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeAudio{}
			r := &fakeReplier{}
			h := NewHandler(&fakeRecorder{}, proc, nil, srv.Client(), logger.Nop())

			h.ProcessAudio(context.Background(), inv, tt.req, r)

			require.True(t, r.deferred)
			require.Equal(t, tt.wantOp, proc.op)
			require.Equal(t, []byte("RIFF"), proc.in)
			require.Equal(t, tt.wantFile, r.file)
			require.Equal(t, []byte("mp3"), r.fileData)
			if tt.wantOp == "segment" {
				require.Equal(t, 1500*time.Millisecond, proc.start)
				require.Equal(t, 10*time.Second, proc.duration)
			}
		})
	}
}

func TestProcessAudioRejectsNonAudio(t *testing.T) {
	proc := &fakeAudio{}
	r := &fakeReplier{}

	newTestHandler(&fakeRecorder{}, proc).ProcessAudio(context.Background(), inv,
		ProcessAudioRequest{File: Attachment{Filename: "notes.txt", ContentType: "text/plain"}}, r)

	require.False(t, r.deferred)
	require.Equal(t, []string{"❌ Please upload an audio file."}, r.responses)
	require.Empty(t, proc.op)
}

func TestProcessAudioDownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	proc := &fakeAudio{}
	r := &fakeReplier{}
	h := NewHandler(&fakeRecorder{}, proc, nil, srv.Client(), logger.Nop())

	h.ProcessAudio(context.Background(), inv,
		ProcessAudioRequest{File: Attachment{URL: srv.URL + "/missing.mp3", Filename: "missing.mp3", ContentType: "audio/mpeg"}}, r)

	require.Empty(t, proc.op)
	require.Len(t, r.followups, 1)
	require.Contains(t, r.followups[0], "Something went wrong")
}

func TestVoiceConnMapsSpeakers(t *testing.T) {
	recv := make(chan *discordgo.Packet)
	c := &voiceConn{
		vc:     &discordgo.VoiceConnection{OpusRecv: recv},
		ssrcs:  make(map[uint32]string),
		frames: make(chan recorder.Frame, 4),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: logger.Nop(),
	}
	go c.forward()

	c.onSpeaking(nil, &discordgo.VoiceSpeakingUpdate{UserID: "u1", SSRC: 7, Speaking: true})
	recv <- &discordgo.Packet{SSRC: 9, Opus: []byte{1}}
	recv <- &discordgo.Packet{SSRC: 7, Sequence: 3, Timestamp: 960, Opus: []byte{2}}

	f := <-c.frames
	require.Equal(t, "u1", f.ParticipantID)
	require.Equal(t, uint16(3), f.Sequence)
	require.Equal(t, []byte{2}, f.Opus)

	close(c.stop)
	<-c.done
	require.Equal(t, 1, c.unknown)
}

func TestProcessAudioRequestOptions(t *testing.T) {
	data := discordgo.ApplicationCommandInteractionData{
		Name: "process_audio",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "audio_file", Type: discordgo.ApplicationCommandOptionAttachment, Value: "123"},
			{Name: "start_time", Type: discordgo.ApplicationCommandOptionNumber, Value: 2.0},
			{Name: "duration", Type: discordgo.ApplicationCommandOptionNumber, Value: 5.0},
		},
		Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
			Attachments: map[string]*discordgo.MessageAttachment{
				"123": {URL: "https://cdn/x.ogg", Filename: "x.ogg", ContentType: "audio/ogg", Size: 10},
			},
		},
	}

	req := processAudioRequest(data)
	require.Equal(t, Attachment{URL: "https://cdn/x.ogg", Filename: "x.ogg", ContentType: "audio/ogg", Size: 10}, req.File)
	require.Equal(t, 2.0, req.Start)
	require.Equal(t, 5.0, req.Duration)
}
