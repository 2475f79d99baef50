package bot

import (
	"context"
)

// Invocation is one slash command call, stripped of Discord types.
type Invocation struct {
	GuildID        string
	TextChannelID  string
	UserID         string
	VoiceChannelID string // the invoking user's current voice channel, if any
}

// Attachment is a file passed to a command option.
type Attachment struct {
	URL         string
	Filename    string
	ContentType string
	Size        int
}

// Replier answers one interaction. Respond or Defer must be called first,
// and only once; follow-ups may be sent any number of times after that.
type Replier interface {
	Respond(ctx context.Context, content string) error
	Defer(ctx context.Context) error
	Followup(ctx context.Context, content string) error
	FollowupFile(ctx context.Context, content, filename string, data []byte) error
}

// Handler implements the slash commands.
type Handler interface {
	Start(ctx context.Context, inv Invocation, r Replier)
	Stop(ctx context.Context, inv Invocation, r Replier)
	ProcessAudio(ctx context.Context, inv Invocation, req ProcessAudioRequest, r Replier)
}

// ProcessAudioRequest holds the options of /process_audio. A zero Duration
// converts the whole file.
type ProcessAudioRequest struct {
	File     Attachment
	Start    float64 // seconds
	Duration float64 // seconds
}
