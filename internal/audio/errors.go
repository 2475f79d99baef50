package audio

import (
	"errors"
	"fmt"
)

// ErrNoAudio is returned when there is nothing to process.
var ErrNoAudio = errors.New("no audio captured")

// ErrEmptyOutput is returned when ffmpeg exits cleanly but writes nothing.
var ErrEmptyOutput = errors.New("ffmpeg produced no output")

// ProcessingError reports a failed ffmpeg step.
type ProcessingError struct {
	Op  string // mix, convert or segment
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("audio %s: %v", e.Op, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
