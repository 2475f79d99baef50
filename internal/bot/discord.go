package bot

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/nguyentantai21042004/meeting-bot/internal/audio"
	"github.com/nguyentantai21042004/meeting-bot/internal/logger"
)

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "start",
		Description: "เริ่มการอัดเสียงในห้องแชทเสียง",
	},
	{
		Name:        "stop",
		Description: "หยุดการอัดเสียงและอัปโหลดไปยัง Supabase",
	},
	{
		Name:        "process_audio",
		Description: "Process uploaded audio file with FFmpeg",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionAttachment,
				Name:        "audio_file",
				Description: "Audio file to convert or trim",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionNumber,
				Name:        "start_time",
				Description: "Segment start in seconds",
			},
			{
				Type:        discordgo.ApplicationCommandOptionNumber,
				Name:        "duration",
				Description: "Segment length in seconds",
			},
		},
	},
}

// Bot connects the command Handler to a Discord gateway session.
type Bot struct {
	session *discordgo.Session
	handler Handler
	guildID string
	logger  logger.Logger
	ctx     context.Context
}

// NewSession creates a discordgo session with the intents the bot needs.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates
	return s, nil
}

// New wires handler to session. guildID limits command registration to one
// guild; empty registers them globally.
func New(session *discordgo.Session, handler Handler, guildID string, log logger.Logger) *Bot {
	return &Bot{
		session: session,
		handler: handler,
		guildID: guildID,
		logger:  log,
	}
}

// Open connects to the gateway and registers the slash commands. ctx is the
// parent of every command's context.
func (b *Bot) Open(ctx context.Context) error {
	b.ctx = ctx
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}

	appID := b.session.State.User.ID
	if _, err := b.session.ApplicationCommandBulkOverwrite(appID, b.guildID, commands); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	b.logger.Info(ctx, "Registered %d slash commands", len(commands))
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info(b.ctx, "Logged in as %s#%s", r.User.Username, r.User.Discriminator)
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.GuildID == "" {
		return
	}

	data := i.ApplicationCommandData()
	inv := Invocation{
		GuildID:       i.GuildID,
		TextChannelID: i.ChannelID,
		UserID:        interactionUser(i),
	}
	r := &interactionReplier{session: s, interaction: i.Interaction}
	ctx := b.ctx

	switch data.Name {
	case "start":
		if vs, err := s.State.VoiceState(i.GuildID, inv.UserID); err == nil && vs != nil {
			inv.VoiceChannelID = vs.ChannelID
		}
		b.handler.Start(ctx, inv, r)
	case "stop":
		b.handler.Stop(ctx, inv, r)
	case "process_audio":
		b.handler.ProcessAudio(ctx, inv, processAudioRequest(data), r)
	default:
		b.logger.Warn(ctx, "Unknown command %q", data.Name)
	}
}

func interactionUser(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func processAudioRequest(data discordgo.ApplicationCommandInteractionData) ProcessAudioRequest {
	var req ProcessAudioRequest
	for _, opt := range data.Options {
		switch opt.Name {
		case "audio_file":
			id, _ := opt.Value.(string)
			if data.Resolved == nil {
				continue
			}
			if att, ok := data.Resolved.Attachments[id]; ok {
				req.File = Attachment{
					URL:         att.URL,
					Filename:    att.Filename,
					ContentType: att.ContentType,
					Size:        att.Size,
				}
			}
		case "start_time":
			req.Start = opt.FloatValue()
		case "duration":
			req.Duration = opt.FloatValue()
		}
	}
	return req
}

type interactionReplier struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

func (r *interactionReplier) Respond(ctx context.Context, content string) error {
	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	}, discordgo.WithContext(ctx))
}

func (r *interactionReplier) Defer(ctx context.Context) error {
	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}, discordgo.WithContext(ctx))
}

func (r *interactionReplier) Followup(ctx context.Context, content string) error {
	_, err := r.session.FollowupMessageCreate(r.interaction, true, &discordgo.WebhookParams{
		Content: content,
	}, discordgo.WithContext(ctx))
	return err
}

func (r *interactionReplier) FollowupFile(ctx context.Context, content, filename string, data []byte) error {
	_, err := r.session.FollowupMessageCreate(r.interaction, true, &discordgo.WebhookParams{
		Content: content,
		Files: []*discordgo.File{{
			Name:        filename,
			ContentType: contentType(filename, data),
			Reader:      bytes.NewReader(data),
		}},
	}, discordgo.WithContext(ctx))
	return err
}

func contentType(filename string, data []byte) string {
	if f, err := audio.ParseFormat(strings.TrimPrefix(path.Ext(filename), ".")); err == nil {
		return f.ContentType()
	}
	return http.DetectContentType(data)
}
