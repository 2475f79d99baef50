package transcription

import (
	"errors"
	"fmt"
)

// ErrEmptyTranscript is returned when there is no text to summarize.
var ErrEmptyTranscript = errors.New("transcript is empty")

// TranscriptionError reports a failed speech-to-text call.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription: %v", e.Err)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

// SummarizationError reports a failed summary call.
type SummarizationError struct {
	Provider string
	Err      error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarization (%s): %v", e.Provider, e.Err)
}

func (e *SummarizationError) Unwrap() error {
	return e.Err
}
