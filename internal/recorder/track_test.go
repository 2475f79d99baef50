package recorder

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/pion/webrtc/v3/pkg/media/oggreader"
	"github.com/stretchr/testify/require"
)

// finalGranule returns the granule position of the last Ogg page, which is
// the stream length in 48 kHz samples plus one.
func finalGranule(t *testing.T, data []byte) uint64 {
	t.Helper()
	r, header, err := oggreader.NewWith(bytes.NewReader(data))
	require.NoError(t, err)
	require.EqualValues(t, opusSampleRate, header.SampleRate)

	var last uint64
	for {
		_, page, err := r.ParseNextPage()
		if errors.Is(err, io.EOF) {
			return last
		}
		require.NoError(t, err)
		last = page.GranulePosition
	}
}

func frameAt(participant string, at time.Time) Frame {
	return Frame{ParticipantID: participant, SSRC: 1, Opus: []byte{0xfc, 0x01, 0x02}, Received: at}
}

func writeFrames(t *testing.T, s *session, participant string, n int, from time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, s.write(frameAt(participant, from.Add(time.Duration(i)*20*time.Millisecond))))
	}
}

func samplesAt(d time.Duration) uint64 {
	return uint64(d) * opusSampleRate / uint64(time.Second)
}

func TestTrackAlignment(t *testing.T) {
	start := time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		write func(t *testing.T, s *session)
		want  uint64
	}{
		{
			name: "first speaker",
			write: func(t *testing.T, s *session) {
				writeFrames(t, s, "alice", 50, start)
			},
			want: 1 + samplesAt(49*20*time.Millisecond),
		},
		{
			name: "late joiner",
			write: func(t *testing.T, s *session) {
				writeFrames(t, s, "alice", 50, start.Add(5*time.Second))
			},
			want: 1 + samplesAt(5*time.Second+49*20*time.Millisecond),
		},
		{
			name: "pause mid meeting",
			write: func(t *testing.T, s *session) {
				writeFrames(t, s, "alice", 10, start)
				writeFrames(t, s, "alice", 10, start.Add(3*time.Second))
			},
			want: 1 + samplesAt(3*time.Second+9*20*time.Millisecond),
		},
		{
			name: "jitter is absorbed",
			write: func(t *testing.T, s *session) {
				writeFrames(t, s, "alice", 10, start.Add(60*time.Millisecond))
			},
			want: 1 + samplesAt(9*20*time.Millisecond),
		},
		{
			name: "no arrival time",
			write: func(t *testing.T, s *session) {
				writeFrames(t, s, "alice", 10, time.Time{})
			},
			want: 1 + samplesAt(9*20*time.Millisecond),
		},
		{
			name: "arrival before start",
			write: func(t *testing.T, s *session) {
				writeFrames(t, s, "alice", 10, start.Add(-time.Second))
			},
			want: 1 + samplesAt(9*20*time.Millisecond),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession("id", "meeting", target, start)
			tt.write(t, s)
			streams := s.finish()
			require.Equal(t, tt.want, finalGranule(t, streams["alice"]))
		})
	}
}

func TestTrackCountsOnlyReceivedFrames(t *testing.T) {
	start := time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)
	s := newSession("id", "meeting", target, start)
	writeFrames(t, s, "bob", 3, start.Add(10*time.Second))

	require.Equal(t, 3, s.tracks["bob"].frames)
}

func TestTrackWriteAfterRelease(t *testing.T) {
	tr, err := newTrack()
	require.NoError(t, err)
	tr.release()

	require.ErrorIs(t, tr.write(frameAt("alice", time.Time{}), 0), errSessionClosed)
}
