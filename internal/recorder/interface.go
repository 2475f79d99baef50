package recorder

import (
	"context"
	"time"
)

// Recorder owns recording sessions from start to the uploaded artifact set.
// Sessions are keyed by guild: a bot holds one voice connection per guild.
type Recorder interface {
	// Start joins the target voice channel and begins capturing audio.
	Start(ctx context.Context, target Target) (*SessionInfo, error)
	// Stop ends the guild's session and runs the mix, transcribe, summarize
	// and upload pipeline. The session is discarded whatever the outcome.
	// Cancelling ctx does not abort the pipeline.
	Stop(ctx context.Context, guildID string) (*Result, error)
	// Import runs the same pipeline for an already recorded file.
	Import(ctx context.Context, label string, data []byte) (*Result, error)
	// Active lists sessions currently recording, oldest first.
	Active() []SessionInfo
	// Wait blocks until no Stop or Import pipeline is running.
	Wait(ctx context.Context) error
}

// Target identifies where to record and where to report.
type Target struct {
	GuildID       string
	ChannelID     string // voice channel
	TextChannelID string
}

// Frame is one Opus packet received from a participant.
type Frame struct {
	ParticipantID string
	SSRC          uint32
	Sequence      uint16
	Timestamp     uint32
	Opus          []byte
	// Received places the frame on the session timeline.
	Received time.Time
}

// VoiceConnection streams frames until Close; Close must close the channel
// returned by Frames.
type VoiceConnection interface {
	Frames() <-chan Frame
	Close(ctx context.Context) error
}

// VoiceGateway joins voice channels.
type VoiceGateway interface {
	Join(ctx context.Context, guildID, channelID string) (VoiceConnection, error)
}

// SessionInfo is a read-only view of an active session.
type SessionInfo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	GuildID      string    `json:"guild_id"`
	ChannelID    string    `json:"channel_id"`
	StartedAt    time.Time `json:"started_at"`
	Participants int       `json:"participants"`
}
