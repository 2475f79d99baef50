package audio

import "fmt"

// Format is an output container understood by ffmpeg's -f flag.
type Format string

const (
	FormatMP3 Format = "mp3"
	FormatWAV Format = "wav"
	FormatOgg Format = "ogg"
)

// ParseFormat accepts the names used in configuration.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatMP3, FormatWAV, FormatOgg:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported audio format %q", s)
	}
}

// Codec is the ffmpeg encoder used for the format.
func (f Format) Codec() string {
	switch f {
	case FormatWAV:
		return "pcm_s16le"
	case FormatOgg:
		return "libopus"
	default:
		return "libmp3lame"
	}
}

// ContentType is the MIME type stored alongside uploaded objects.
func (f Format) ContentType() string {
	switch f {
	case FormatWAV:
		return "audio/wav"
	case FormatOgg:
		return "audio/ogg"
	default:
		return "audio/mpeg"
	}
}

// Ext is the file extension without the dot.
func (f Format) Ext() string {
	if f == "" {
		return string(FormatMP3)
	}
	return string(f)
}
