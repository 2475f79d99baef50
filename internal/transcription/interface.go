package transcription

import "context"

// Service turns meeting audio into text and text into a meeting summary.
type Service interface {
	// Transcribe sends audio to the speech-to-text API. filename only hints
	// the container format to the API.
	Transcribe(ctx context.Context, data []byte, filename string) (string, error)
	// Summarize produces the three-section meeting summary in language.
	Summarize(ctx context.Context, text, language string) (string, error)
	// ExtractTeamReport pulls per-team progress, blockers and next steps.
	ExtractTeamReport(ctx context.Context, text string) (*TeamReport, error)
}

// TeamReport is the structured view of a stand-up style meeting.
type TeamReport struct {
	TeamName string      `json:"team_name"`
	Events   []TeamEvent `json:"events"`
}

type TeamEvent struct {
	Progress string `json:"progress"`
	Blocker  string `json:"blocker"`
	NextStep string `json:"next_step"`
}

// summarizer is one chat backend able to answer a system+user prompt.
type summarizer interface {
	name() string
	complete(ctx context.Context, system, user string) (string, error)
}
