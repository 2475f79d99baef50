package recorder

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRecording is returned by Start when the guild has a session.
	ErrAlreadyRecording = errors.New("already recording in this server")
	// ErrNoActiveSession is returned by Stop when there is nothing to stop.
	ErrNoActiveSession = errors.New("no active recording in this server")
	// ErrNotInVoice is returned when there is no voice channel to join.
	ErrNotInVoice = errors.New("not in a voice channel")
)

// Stage names one step of the stop pipeline.
type Stage string

const (
	StageAudio      Stage = "audio processing"
	StageTranscribe Stage = "transcription"
	StageSummarize  Stage = "summarization"
	StageUpload     Stage = "upload"
)

// StageError aborts the pipeline. Result holds whatever was produced before
// the failing stage, including keys already uploaded.
type StageError struct {
	Stage  Stage
	Err    error
	Result *Result
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
