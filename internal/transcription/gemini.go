package transcription

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/meeting-bot/internal/config"
	"google.golang.org/genai"
)

type geminiSummarizer struct {
	client      *genai.Client
	model       string
	temperature float32
}

func newGeminiSummarizer(ctx context.Context, cfg config.GeminiConfig, temperature float32) (*geminiSummarizer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, err
	}
	return &geminiSummarizer{client: client, model: cfg.Model, temperature: temperature}, nil
}

func (g *geminiSummarizer) name() string { return "gemini" }

func (g *geminiSummarizer) complete(ctx context.Context, system, user string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text string
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
		if text != "" {
			return text, nil
		}
	}

	return "", fmt.Errorf("empty response from Gemini")
}
