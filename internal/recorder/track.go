package recorder

import (
	"bytes"
	"fmt"
	"time"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3/pkg/media/oggwriter"
)

const (
	opusSampleRate = 48000
	opusChannels   = 2
	// Discord voice RTP payload type for Opus.
	opusPayloadType = 0x78
	// Discord sends 20ms Opus frames.
	frameSamples = opusSampleRate / 50
	// A track running this far behind the session clock gets padded.
	maxLag = 5 * frameSamples
)

// silenceFrame is the Opus frame Discord itself sends for 20ms of silence.
var silenceFrame = []byte{0xF8, 0xFF, 0xFE}

// track accumulates one participant's Opus packets as an in-memory Ogg file
// ffmpeg can read directly. Packets are restamped on the session clock so
// every track starts at the session start.
type track struct {
	buf    bytes.Buffer
	ogg    *oggwriter.OggWriter
	frames int
	// samples is the position of the next packet in 48 kHz samples.
	samples uint64
	seq     uint16
}

func newTrack() (*track, error) {
	t := &track{}
	w, err := oggwriter.NewWith(&t.buf, opusSampleRate, opusChannels)
	if err != nil {
		return nil, fmt.Errorf("create ogg writer: %w", err)
	}
	t.ogg = w
	return t, nil
}

// write appends f received at offset at into the session. Silence fills the
// time the participant was not sending.
func (t *track) write(f Frame, at time.Duration) error {
	if t.ogg == nil {
		return errSessionClosed
	}
	if at > 0 {
		want := uint64(at) * opusSampleRate / uint64(time.Second)
		if want > t.samples+maxLag {
			for t.samples+frameSamples <= want {
				if err := t.append(f.SSRC, silenceFrame); err != nil {
					return err
				}
			}
		}
	}
	if err := t.append(f.SSRC, f.Opus); err != nil {
		return err
	}
	t.frames++
	return nil
}

func (t *track) append(ssrc uint32, payload []byte) error {
	err := t.ogg.WriteRTP(&rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    opusPayloadType,
			SequenceNumber: t.seq,
			Timestamp:      uint32(t.samples),
			SSRC:           ssrc,
		},
		Payload: payload,
	})
	if err != nil {
		return err
	}
	t.seq++
	t.samples += frameSamples
	return nil
}

// finish closes the Ogg stream and hands out the bytes. The track must not
// be written to afterwards.
func (t *track) finish() []byte {
	_ = t.ogg.Close()
	return t.buf.Bytes()
}

func (t *track) release() {
	t.buf = bytes.Buffer{}
	t.ogg = nil
}
