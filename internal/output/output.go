package output

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/meeting-bot/internal/audio"
	"github.com/nguyentantai21042004/meeting-bot/internal/meeting"
	"github.com/nguyentantai21042004/meeting-bot/internal/recorder"
	"github.com/nguyentantai21042004/meeting-bot/internal/storage"
	"github.com/nguyentantai21042004/meeting-bot/internal/transcription"
)

const previewLimit = 500

// Formatter renders every message the bot shows to users. Error details
// stay in the logs; users only see the kind of failure.
type Formatter struct{}

func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) RecordingStarted() string {
	return "🔴 Recording started! Use `/stop` to finish."
}

func (f *Formatter) RecordingStopped(duration time.Duration) string {
	return fmt.Sprintf("⏹️ Recording stopped!\n⏱️ Duration: %s\n🔄 Processing...", meeting.FormatDuration(duration))
}

// MeetingComplete is the final report of a successful stop.
func (f *Formatter) MeetingComplete(res *recorder.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Processing complete! `%s`\n", res.Name)
	if len(res.Participants) > 0 && res.Source == meeting.SourceDiscord {
		fmt.Fprintf(&b, "🎙️ Recorded: %s\n", meeting.FormatUserMentions(res.Participants))
	}
	fmt.Fprintf(&b, "📁 Uploads: %d files\n", len(res.Uploaded))
	fmt.Fprintf(&b, "📝 Transcription: %d characters\n", len([]rune(res.Transcript)))
	if res.Source == meeting.SourceDiscord {
		fmt.Fprintf(&b, "⏱️ Duration: %s\n", meeting.FormatDuration(res.Duration()))
	}
	if res.Transcript != "" {
		fmt.Fprintf(&b, "```\n%s\n```", meeting.Truncate(res.Transcript, previewLimit))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Summary is posted after MeetingComplete when a summary exists.
func (f *Formatter) Summary(res *recorder.Result) string {
	if res.Summary == "" {
		return ""
	}
	return "🤖 **Summary**\n" + res.Summary
}

// TeamReport renders the structured report, one line per event.
func (f *Formatter) TeamReport(report *transcription.TeamReport) string {
	if report == nil || len(report.Events) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📋 **%s**\n", report.TeamName)
	for _, e := range report.Events {
		fmt.Fprintf(&b, "• %s", e.Progress)
		if e.Blocker != "" {
			fmt.Fprintf(&b, " | blocker: %s", e.Blocker)
		}
		if e.NextStep != "" {
			fmt.Fprintf(&b, " | next: %s", e.NextStep)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f *Formatter) ProcessedAudio() string {
	return "🎵 Processed audio file:"
}

func (f *Formatter) NotAudio() string {
	return "❌ Please upload an audio file."
}

// Error maps err to a user message by kind.
func (f *Formatter) Error(err error) string {
	var (
		stageErr *recorder.StageError
		procErr  *audio.ProcessingError
		transErr *transcription.TranscriptionError
		sumErr   *transcription.SummarizationError
		storeErr *storage.StorageError
	)

	switch {
	case errors.Is(err, recorder.ErrAlreadyRecording):
		return "❌ Already recording in this server"
	case errors.Is(err, recorder.ErrNoActiveSession):
		return "❌ Not recording in this server"
	case errors.Is(err, recorder.ErrNotInVoice):
		return "❌ You're not in a voice channel right now"
	case errors.As(err, &storeErr):
		msg := "⚠️ Upload failed, the meeting was only partly saved."
		if errors.As(err, &stageErr) && stageErr.Result != nil {
			msg += f.uploaded(stageErr.Result.Uploaded)
		}
		return msg
	case errors.Is(err, audio.ErrNoAudio):
		return "❌ No audio was captured, nothing to process."
	case errors.As(err, &procErr):
		return "❌ Audio processing failed."
	case errors.As(err, &transErr):
		return "❌ Transcription failed."
	case errors.As(err, &sumErr):
		return "❌ Summarization failed."
	default:
		return "❌ Something went wrong."
	}
}

func (f *Formatter) uploaded(keys []string) string {
	if len(keys) == 0 {
		return "\nNothing was uploaded."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\nUploaded %d files:", len(keys))
	for _, k := range keys {
		fmt.Fprintf(&b, "\n• `%s`", k)
	}
	return b.String()
}
