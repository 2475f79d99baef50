package audio

import (
	"context"
	"time"
)

// Processor mixes and re-encodes audio through ffmpeg. It keeps no state
// between calls.
type Processor interface {
	// Mix combines one buffer per participant into a single track.
	Mix(ctx context.Context, streams map[string][]byte, format Format) ([]byte, error)
	// Convert re-encodes a single buffer.
	Convert(ctx context.Context, data []byte, format Format) ([]byte, error)
	// PrepareForTranscription makes a compact mono mp3 for speech-to-text.
	PrepareForTranscription(ctx context.Context, data []byte) ([]byte, error)
	// ExtractSegment cuts duration worth of audio starting at start.
	ExtractSegment(ctx context.Context, data []byte, start, duration time.Duration, format Format) ([]byte, error)
}
