package bot

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/meeting-bot/internal/audio"
	"github.com/nguyentantai21042004/meeting-bot/internal/logger"
	"github.com/nguyentantai21042004/meeting-bot/internal/meeting"
	"github.com/nguyentantai21042004/meeting-bot/internal/recorder"
)

func (h *implHandler) Start(ctx context.Context, inv Invocation, r Replier) {
	ctx = logger.WithFields(ctx, "command", "start", "guild", inv.GuildID, "user", inv.UserID)

	_, err := h.recorder.Start(ctx, recorder.Target{
		GuildID:       inv.GuildID,
		ChannelID:     inv.VoiceChannelID,
		TextChannelID: inv.TextChannelID,
	})
	if err != nil {
		h.logger.Warn(ctx, "Start rejected: %v", err)
		h.reply(ctx, r.Respond(ctx, h.formatter.Error(err)))
		return
	}
	h.reply(ctx, r.Respond(ctx, h.formatter.RecordingStarted()))
}

func (h *implHandler) Stop(ctx context.Context, inv Invocation, r Replier) {
	// Replies must still go out when shutdown cancels the gateway context.
	ctx = logger.WithFields(context.WithoutCancel(ctx), "command", "stop", "guild", inv.GuildID, "user", inv.UserID)

	// The pipeline outlives Discord's three second answer window.
	if err := r.Defer(ctx); err != nil {
		h.logger.Error(ctx, "Failed to defer reply: %v", err)
		return
	}

	res, err := h.recorder.Stop(ctx, inv.GuildID)
	if res != nil {
		h.send(ctx, r, h.formatter.RecordingStopped(res.Duration()))
	}
	if err != nil {
		if !errors.Is(err, recorder.ErrNoActiveSession) {
			h.logger.Error(ctx, "Stop failed: %v", err)
		}
		h.send(ctx, r, h.formatter.Error(err))
		return
	}

	h.send(ctx, r, h.formatter.MeetingComplete(res))
	if msg := h.formatter.Summary(res); msg != "" {
		h.send(ctx, r, msg)
	}
	if msg := h.formatter.TeamReport(res.TeamReport); msg != "" {
		h.send(ctx, r, msg)
	}
}

func (h *implHandler) ProcessAudio(ctx context.Context, inv Invocation, req ProcessAudioRequest, r Replier) {
	ctx = logger.WithFields(ctx, "command", "process_audio", "guild", inv.GuildID, "user", inv.UserID)

	if !strings.HasPrefix(req.File.ContentType, "audio/") {
		h.reply(ctx, r.Respond(ctx, h.formatter.NotAudio()))
		return
	}
	if req.File.Size > maxDownloadSize || req.Start < 0 || req.Duration < 0 {
		h.reply(ctx, r.Respond(ctx, h.formatter.Error(&audio.ProcessingError{Op: "segment", Err: errInvalidRequest})))
		return
	}
	if err := r.Defer(ctx); err != nil {
		h.logger.Error(ctx, "Failed to defer reply: %v", err)
		return
	}

	data, err := h.download(ctx, req.File.URL)
	if err != nil {
		h.logger.Error(ctx, "Download of %s failed: %v", req.File.Filename, err)
		h.send(ctx, r, h.formatter.Error(err))
		return
	}

	var (
		out      []byte
		filename string
	)
	if req.Duration > 0 {
		out, err = h.audio.ExtractSegment(ctx, data, seconds(req.Start), seconds(req.Duration), audio.FormatMP3)
		filename = fmt.Sprintf("segment_%ss_%ss.mp3", formatSeconds(req.Start), formatSeconds(req.Duration))
	} else {
		out, err = h.audio.Convert(ctx, data, audio.FormatMP3)
		filename = "converted_" + strings.TrimSuffix(req.File.Filename, path.Ext(req.File.Filename)) + ".mp3"
	}
	if err != nil {
		h.logger.Error(ctx, "Processing %s failed: %v", req.File.Filename, err)
		h.send(ctx, r, h.formatter.Error(err))
		return
	}

	h.logger.Info(ctx, "Processed %s into %s (%d bytes)", req.File.Filename, filename, len(out))
	h.reply(ctx, r.FollowupFile(ctx, h.formatter.ProcessedAudio(), filename, out))
}

// send posts text as follow-ups, split to Discord's message limit.
func (h *implHandler) send(ctx context.Context, r Replier, text string) {
	for _, chunk := range meeting.Chunk(text, maxMessageLen) {
		if err := r.Followup(ctx, chunk); err != nil {
			h.logger.Error(ctx, "Failed to send follow-up: %v", err)
			return
		}
	}
}

func (h *implHandler) reply(ctx context.Context, err error) {
	if err != nil {
		h.logger.Error(ctx, "Failed to reply: %v", err)
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
