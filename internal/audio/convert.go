package audio

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"
)

// baseArgs keep ffmpeg quiet and non-interactive.
var baseArgs = []string{"-hide_banner", "-nostdin", "-loglevel", "error"}

// outputArgs encode to format on stdout. Metadata and encoder tags are
// stripped so repeated runs with the same ffmpeg build are byte-identical.
func outputArgs(format Format) []string {
	return []string{
		"-vn",
		"-map_metadata", "-1",
		"-fflags", "+bitexact",
		"-flags:a", "+bitexact",
		"-c:a", format.Codec(),
		"-f", string(format),
		"-",
	}
}

// Speech settings keep a long meeting under the transcription API's upload
// limit: mono 16 kHz at 32 kbit/s is about 14 MB per hour.
const (
	SpeechBitrate    = 32000
	speechSampleRate = "16000"
)

// Convert re-encodes a single buffer into format.
func (p *implProcessor) Convert(ctx context.Context, data []byte, format Format) ([]byte, error) {
	return p.transcode(ctx, "convert", data, format, nil)
}

// PrepareForTranscription downmixes data to a small mono mp3 that is only
// meant for speech recognition.
func (p *implProcessor) PrepareForTranscription(ctx context.Context, data []byte) ([]byte, error) {
	speech := []string{
		"-ac", "1",
		"-ar", speechSampleRate,
		"-b:a", strconv.Itoa(SpeechBitrate/1000) + "k",
	}
	return p.transcode(ctx, "speech", data, FormatMP3, speech)
}

// ExtractSegment cuts [start, start+duration) out of data. A zero duration
// keeps everything after start.
func (p *implProcessor) ExtractSegment(ctx context.Context, data []byte, start, duration time.Duration, format Format) ([]byte, error) {
	if start < 0 || duration < 0 {
		return nil, &ProcessingError{Op: "segment", Err: fmt.Errorf("negative start or duration")}
	}

	var seek []string
	if start > 0 {
		seek = append(seek, "-ss", seconds(start))
	}
	if duration > 0 {
		seek = append(seek, "-t", seconds(duration))
	}
	return p.transcode(ctx, "segment", data, format, seek)
}

func (p *implProcessor) transcode(ctx context.Context, op string, data []byte, format Format, extra []string) ([]byte, error) {
	if len(data) == 0 {
		return nil, &ProcessingError{Op: op, Err: ErrNoAudio}
	}

	workDir, err := p.makeWorkDir(op + "-*")
	if err != nil {
		return nil, &ProcessingError{Op: op, Err: err}
	}
	defer p.cleanupWorkDir(ctx, workDir)

	if err := writeTemp(filepath.Join(workDir, "input"), data); err != nil {
		return nil, &ProcessingError{Op: op, Err: err}
	}

	var args []string
	args = append(args, baseArgs...)
	args = append(args, "-i", "input")
	args = append(args, extra...)
	args = append(args, outputArgs(format)...)

	out, err := p.run(ctx, workDir, args)
	if err != nil {
		return nil, &ProcessingError{Op: op, Err: err}
	}

	p.logger.Debug(ctx, "ffmpeg %s: %d bytes -> %d bytes %s", op, len(data), len(out), format)
	return out, nil
}

// run executes ffmpeg inside workDir, so inputs are passed by their relative
// names, under the configured timeout. Empty output is an error.
func (p *implProcessor) run(ctx context.Context, workDir string, args []string) ([]byte, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	out, err := p.executor.ExecuteInDir(ctx, workDir, p.binary, args...)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrEmptyOutput
	}
	return out, nil
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
