package recorder

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/nguyentantai21042004/meeting-bot/internal/logger"
)

var errSessionClosed = errors.New("session closed")

type session struct {
	id        string
	name      string
	target    Target
	startedAt time.Time

	mu      sync.Mutex
	conn    VoiceConnection
	tracks  map[string]*track
	dropped int
	closed  bool
	done    chan struct{}
}

func newSession(id, name string, target Target, startedAt time.Time) *session {
	return &session{
		id:        id,
		name:      name,
		target:    target,
		startedAt: startedAt,
		tracks:    make(map[string]*track),
		done:      make(chan struct{}),
	}
}

// active reports whether the voice join finished and frames are flowing.
func (s *session) active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

func (s *session) attach(conn VoiceConnection) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

// receive drains the connection until it is closed.
func (s *session) receive(ctx context.Context, log logger.Logger) {
	defer close(s.done)
	for f := range s.conn.Frames() {
		if len(f.Opus) == 0 || f.ParticipantID == "" {
			continue
		}
		if err := s.write(f); err != nil {
			log.Warn(ctx, "Dropping frame from %s: %v", f.ParticipantID, err)
		}
	}
}

func (s *session) write(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSessionClosed
	}

	t, ok := s.tracks[f.ParticipantID]
	if !ok {
		var err error
		if t, err = newTrack(); err != nil {
			s.dropped++
			return err
		}
		s.tracks[f.ParticipantID] = t
	}
	if err := t.write(f, s.offset(f.Received)); err != nil {
		s.dropped++
		return err
	}
	return nil
}

// offset places an arrival time on the session clock. Frames without one
// are appended back to back.
func (s *session) offset(received time.Time) time.Duration {
	if received.IsZero() || received.Before(s.startedAt) {
		return 0
	}
	return received.Sub(s.startedAt)
}

// wait blocks until the receive loop has exited or ctx is done.
func (s *session) wait(ctx context.Context, limit time.Duration) bool {
	timer := time.NewTimer(limit)
	defer timer.Stop()
	select {
	case <-s.done:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// finish closes every track and returns participant id -> Ogg bytes.
func (s *session) finish() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	streams := make(map[string][]byte, len(s.tracks))
	for id, t := range s.tracks {
		if t.frames == 0 {
			continue
		}
		streams[id] = t.finish()
	}
	return streams
}

func (s *session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tracks {
		t.release()
		delete(s.tracks, id)
	}
}

func (s *session) info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionInfo{
		ID:           s.id,
		Name:         s.name,
		GuildID:      s.target.GuildID,
		ChannelID:    s.target.ChannelID,
		StartedAt:    s.startedAt,
		Participants: len(s.tracks),
	}
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
