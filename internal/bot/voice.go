package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/nguyentantai21042004/meeting-bot/internal/logger"
	"github.com/nguyentantai21042004/meeting-bot/internal/recorder"
)

// frameBuffer absorbs short stalls of the session's receive loop.
const frameBuffer = 256

// VoiceGateway joins voice channels through a discordgo session.
type VoiceGateway struct {
	session *discordgo.Session
	logger  logger.Logger
}

func NewVoiceGateway(session *discordgo.Session, log logger.Logger) *VoiceGateway {
	return &VoiceGateway{session: session, logger: log}
}

// Join connects muted and undeafened so Opus packets are delivered.
func (g *VoiceGateway) Join(ctx context.Context, guildID, channelID string) (recorder.VoiceConnection, error) {
	vc, err := g.session.ChannelVoiceJoin(guildID, channelID, true, false)
	if err != nil {
		return nil, fmt.Errorf("channel voice join: %w", err)
	}
	if err := ctx.Err(); err != nil {
		_ = vc.Disconnect()
		return nil, err
	}
	if vc.OpusRecv == nil {
		_ = vc.Disconnect()
		return nil, errors.New("voice connection has no receive channel")
	}

	c := &voiceConn{
		vc:     vc,
		ssrcs:  make(map[uint32]string),
		frames: make(chan recorder.Frame, frameBuffer),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: g.logger,
	}
	vc.AddHandler(c.onSpeaking)
	go c.forward()
	return c, nil
}

// voiceConn maps RTP SSRCs to Discord user ids and forwards frames.
type voiceConn struct {
	vc     *discordgo.VoiceConnection
	logger logger.Logger

	mu      sync.Mutex
	ssrcs   map[uint32]string
	unknown int

	frames chan recorder.Frame
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

func (c *voiceConn) Frames() <-chan recorder.Frame {
	return c.frames
}

func (c *voiceConn) onSpeaking(vc *discordgo.VoiceConnection, vs *discordgo.VoiceSpeakingUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ssrcs[uint32(vs.SSRC)] = vs.UserID
}

func (c *voiceConn) participant(ssrc uint32) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.ssrcs[ssrc]
	if !ok {
		c.unknown++
	}
	return id
}

func (c *voiceConn) forward() {
	defer close(c.done)
	for {
		select {
		case <-c.stop:
			return
		case p, ok := <-c.vc.OpusRecv:
			if !ok {
				return
			}
			// Packets that arrive before the speaking update cannot be
			// attributed and are dropped.
			userID := c.participant(p.SSRC)
			if userID == "" {
				continue
			}
			f := recorder.Frame{
				ParticipantID: userID,
				SSRC:          p.SSRC,
				Sequence:      p.Sequence,
				Timestamp:     p.Timestamp,
				Opus:          p.Opus,
				Received:      time.Now(),
			}
			select {
			case c.frames <- f:
			case <-c.stop:
				return
			}
		}
	}
}

// Close stops forwarding, closes Frames and leaves the voice channel.
func (c *voiceConn) Close(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		close(c.stop)
		<-c.done
		close(c.frames)

		c.mu.Lock()
		unknown := c.unknown
		c.mu.Unlock()
		if unknown > 0 {
			c.logger.Debug(ctx, "Dropped %d packets from unknown speakers", unknown)
		}
		err = c.vc.Disconnect()
	})
	return err
}
