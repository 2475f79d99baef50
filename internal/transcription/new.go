package transcription

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nguyentantai21042004/meeting-bot/internal/config"
	"github.com/nguyentantai21042004/meeting-bot/internal/logger"
	openai "github.com/sashabaranov/go-openai"
)

type implService struct {
	client          *openai.Client
	transcribeModel string
	chatModel       string
	language        string
	// speechLanguage is the Whisper hint; empty means auto-detect.
	speechLanguage string
	temperature    float32
	timeout        time.Duration
	summarizer     summarizer
	logger         logger.Logger
}

// New creates a Service backed by OpenAI for speech-to-text and by the
// configured provider (openai or gemini) for summaries.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (Service, error) {
	oaCfg := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		oaCfg.BaseURL = cfg.OpenAI.BaseURL
	}
	oaCfg.HTTPClient = &http.Client{Timeout: cfg.OpenAI.Timeout()}

	s := &implService{
		client:          openai.NewClientWithConfig(oaCfg),
		transcribeModel: cfg.OpenAI.TranscribeModel,
		chatModel:       cfg.OpenAI.ChatModel,
		language:        cfg.Summary.Language,
		speechLanguage:  cfg.OpenAI.TranscribeLanguage,
		temperature:     cfg.Summary.SamplingTemperature(),
		timeout:         cfg.OpenAI.Timeout(),
		logger:          log,
	}

	switch cfg.Summary.Provider {
	case "gemini":
		g, err := newGeminiSummarizer(ctx, cfg.Gemini, s.temperature)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		s.summarizer = g
	default:
		s.summarizer = &openaiSummarizer{client: s.client, model: s.chatModel, temperature: s.temperature}
	}

	return s, nil
}

// withTimeout bounds one outbound API call.
func (s *implService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
