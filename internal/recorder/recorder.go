package recorder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/meeting-bot/internal/audio"
	"github.com/nguyentantai21042004/meeting-bot/internal/logger"
	"github.com/nguyentantai21042004/meeting-bot/internal/meeting"
	"github.com/nguyentantai21042004/meeting-bot/internal/storage"
	"github.com/nguyentantai21042004/meeting-bot/internal/transcription"
)

// Result describes a finished pipeline run. On a StageError it is partial.
type Result struct {
	Name         string
	SessionID    string
	Source       meeting.Source
	StartedAt    time.Time
	EndedAt      time.Time
	Participants []string
	Transcript   string
	Summary      string
	TeamReport   *transcription.TeamReport
	Metadata     *meeting.Metadata
	// Uploaded lists object keys written so far, in upload order.
	Uploaded []string
}

func (r *Result) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

const (
	speechFilename    = "meeting_mix"
	transcribeSegment = 20 * time.Minute
)

// capture is the frozen input of one pipeline run.
type capture struct {
	name      string
	sessionID string
	source    meeting.Source
	target    Target
	startedAt time.Time
	endedAt   time.Time
	streams   map[string][]byte
}

func (r *implRecorder) Start(ctx context.Context, target Target) (*SessionInfo, error) {
	if target.ChannelID == "" {
		return nil, ErrNotInVoice
	}
	if target.GuildID == "" {
		return nil, fmt.Errorf("start: guild is required")
	}

	s, err := r.register(target)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithFields(ctx, "meeting", s.name, "guild", target.GuildID)

	joinCtx, cancel := context.WithTimeout(ctx, r.joinTimeout)
	conn, err := r.gateway.Join(joinCtx, target.GuildID, target.ChannelID)
	cancel()
	if err != nil {
		r.unregister(target.GuildID, s)
		r.logger.Error(ctx, "Failed to join voice channel %s: %v", target.ChannelID, err)
		return nil, fmt.Errorf("join voice channel: %w", err)
	}

	s.attach(conn)
	go s.receive(background(ctx), r.logger)

	r.logger.Info(ctx, "Recording started in channel %s", target.ChannelID)
	info := s.info()
	return &info, nil
}

func (r *implRecorder) Stop(ctx context.Context, guildID string) (*Result, error) {
	defer r.begin()()

	s, ok := r.take(guildID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	defer s.release()

	endedAt := r.now()
	ctx = logger.WithFields(background(ctx), "meeting", s.name, "guild", guildID)
	r.logger.Info(ctx, "Stopping recording after %s", meeting.FormatDuration(endedAt.Sub(s.startedAt)))

	if err := s.conn.Close(ctx); err != nil {
		r.logger.Warn(ctx, "Voice disconnect failed: %v", err)
	}
	if !s.wait(ctx, defaultDrainTimeout) {
		r.logger.Warn(ctx, "Receive loop did not drain in time")
	}

	return r.run(ctx, capture{
		name:      s.name,
		sessionID: s.id,
		source:    meeting.SourceDiscord,
		target:    s.target,
		startedAt: s.startedAt,
		endedAt:   endedAt,
		streams:   s.finish(),
	})
}

func (r *implRecorder) Import(ctx context.Context, label string, data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, &StageError{Stage: StageAudio, Err: &audio.ProcessingError{Op: "import", Err: audio.ErrNoAudio}}
	}
	if label == "" {
		label = "upload"
	}
	defer r.begin()()

	name, startedAt := r.namer.Next()
	ctx = logger.WithFields(background(ctx), "meeting", name, "source", string(meeting.SourceImport))
	r.logger.Info(ctx, "Importing %s (%d bytes)", label, len(data))

	return r.run(ctx, capture{
		name:      name,
		sessionID: r.newID(),
		source:    meeting.SourceImport,
		startedAt: startedAt,
		endedAt:   startedAt,
		streams:   map[string][]byte{label: data},
	})
}

// run executes mix, transcribe, summarize and upload strictly in order.
func (r *implRecorder) run(ctx context.Context, c capture) (*Result, error) {
	ids := sortedKeys(c.streams)
	res := &Result{
		Name:         c.name,
		SessionID:    c.sessionID,
		Source:       c.source,
		StartedAt:    c.startedAt,
		EndedAt:      c.endedAt,
		Participants: ids,
	}
	fail := func(stage Stage, err error) (*Result, error) {
		r.logger.Error(ctx, "Pipeline aborted at %s: %v", stage, err)
		return res, &StageError{Stage: stage, Err: err, Result: res}
	}

	mixed, err := r.audio.Mix(ctx, c.streams, r.format)
	if err != nil {
		return fail(StageAudio, err)
	}
	individuals := make(map[string][]byte, len(ids))
	for _, id := range ids {
		out, err := r.audio.Convert(ctx, c.streams[id], r.format)
		if err != nil {
			return fail(StageAudio, fmt.Errorf("participant %s: %w", id, err))
		}
		individuals[id] = out
	}

	paths := storage.NewPaths(c.name)
	ext := r.format.Ext()

	speech, err := r.audio.PrepareForTranscription(ctx, mixed)
	if err != nil {
		return fail(StageAudio, err)
	}
	segments, err := r.split(ctx, speech)
	if err != nil {
		return fail(StageAudio, err)
	}
	transcript, err := r.transcribe(ctx, segments)
	if err != nil {
		return fail(StageTranscribe, err)
	}
	res.Transcript = transcript

	if transcript != "" {
		summary, err := r.transcriber.Summarize(ctx, transcript, r.language)
		if err != nil && !errors.Is(err, transcription.ErrEmptyTranscript) {
			return fail(StageSummarize, err)
		}
		res.Summary = summary

		if r.teamReport {
			report, err := r.transcriber.ExtractTeamReport(ctx, transcript)
			if err != nil {
				r.logger.Warn(ctx, "Team report skipped: %v", err)
			} else {
				res.TeamReport = report
			}
		}
	} else {
		r.logger.Warn(ctx, "Transcript is empty, skipping summary")
	}

	md := meeting.NewMetadata(c.name, c.sessionID, c.source, c.startedAt, c.endedAt, ids, res.Transcript, res.Summary)
	md.GuildID = c.target.GuildID
	md.ChannelID = c.target.ChannelID
	res.Metadata = &md

	for _, id := range ids {
		key := paths.Individual(id, ext)
		if err := r.storage.UploadAudio(ctx, key, individuals[id], r.format); err != nil {
			return fail(StageUpload, err)
		}
		res.Uploaded = append(res.Uploaded, key)
	}

	key := paths.Mix(ext)
	if err := r.storage.UploadAudio(ctx, key, mixed, r.format); err != nil {
		return fail(StageUpload, err)
	}
	res.Uploaded = append(res.Uploaded, key)

	key = paths.Transcription()
	if err := r.storage.UploadText(ctx, key, res.Transcript); err != nil {
		return fail(StageUpload, err)
	}
	res.Uploaded = append(res.Uploaded, key)

	key = paths.Metadata()
	if err := r.storage.UploadMetadata(ctx, key, md); err != nil {
		return fail(StageUpload, err)
	}
	res.Uploaded = append(res.Uploaded, key)

	r.logger.Info(ctx, "Meeting %s complete: %d participants, %d objects uploaded", c.name, len(ids), len(res.Uploaded))
	return res, nil
}

// split cuts the speech copy into pieces the transcriber accepts. The
// duration is estimated from the constant speech bitrate.
func (r *implRecorder) split(ctx context.Context, speech []byte) ([][]byte, error) {
	if len(speech) <= r.maxTranscribe {
		return [][]byte{speech}, nil
	}
	total := time.Duration(len(speech)) * 8 * time.Second / audio.SpeechBitrate
	r.logger.Info(ctx, "Speech copy is %d bytes, transcribing %s in segments", len(speech), meeting.FormatDuration(total))

	var segments [][]byte
	for start := time.Duration(0); start < total; start += transcribeSegment {
		seg, err := r.audio.ExtractSegment(ctx, speech, start, transcribeSegment, audio.FormatMP3)
		if err != nil {
			// The estimate can overshoot the real end by a frame.
			if len(segments) > 0 && errors.Is(err, audio.ErrEmptyOutput) {
				break
			}
			return nil, fmt.Errorf("segment at %s: %w", meeting.FormatDuration(start), err)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func (r *implRecorder) transcribe(ctx context.Context, segments [][]byte) (string, error) {
	if len(segments) == 1 {
		return r.transcriber.Transcribe(ctx, segments[0], speechFilename+".mp3")
	}
	parts := make([]string, 0, len(segments))
	for i, seg := range segments {
		text, err := r.transcriber.Transcribe(ctx, seg, fmt.Sprintf("%s_part%d.mp3", speechFilename, i+1))
		if err != nil {
			return "", err
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}
