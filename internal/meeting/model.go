package meeting

import "time"

// Source tells where a meeting's audio came from.
type Source string

const (
	SourceDiscord Source = "discord"
	SourceImport  Source = "import"
)

// Metadata is the record written next to a meeting's audio and transcript.
// It is never modified after upload.
type Metadata struct {
	MeetingName         string    `json:"meeting_name"`
	SessionID           string    `json:"session_id"`
	Source              Source    `json:"source"`
	GuildID             string    `json:"guild_id,omitempty"`
	ChannelID           string    `json:"channel_id,omitempty"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	Duration            float64   `json:"duration"`
	DurationFormatted   string    `json:"duration_formatted"`
	NumUsers            int       `json:"num_users"`
	RecordedUsers       string    `json:"recorded_users"`
	RecordedUserIDs     []string  `json:"recorded_user_ids"`
	TranscriptionLength int       `json:"transcription_length"`
	Summary             string    `json:"summary,omitempty"`
}

// NewMetadata fills the derived fields from the raw session facts.
func NewMetadata(name, sessionID string, source Source, start, end time.Time, participants []string, transcript, summary string) Metadata {
	d := end.Sub(start)
	ids := append([]string{}, participants...)
	return Metadata{
		MeetingName:         name,
		SessionID:           sessionID,
		Source:              source,
		StartTime:           start,
		EndTime:             end,
		Duration:            d.Seconds(),
		DurationFormatted:   FormatDuration(d),
		NumUsers:            len(ids),
		RecordedUsers:       FormatUserMentions(ids),
		RecordedUserIDs:     ids,
		TranscriptionLength: len([]rune(transcript)),
		Summary:             summary,
	}
}
