package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Summarize asks the configured chat backend for the three-section summary.
func (s *implService) Summarize(ctx context.Context, text, language string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &SummarizationError{Provider: s.summarizer.name(), Err: ErrEmptyTranscript}
	}
	if language == "" {
		language = s.language
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.logger.Info(ctx, "Summarizing %d characters with %s (language %s)", len([]rune(text)), s.summarizer.name(), language)

	summary, err := s.summarizer.complete(ctx, SystemPrompt(language), userPrefix+text)
	if err != nil {
		return "", &SummarizationError{Provider: s.summarizer.name(), Err: err}
	}
	return strings.TrimSpace(summary), nil
}

// ExtractTeamReport uses JSON mode so the reply can be decoded directly.
func (s *implService) ExtractTeamReport(ctx context.Context, text string) (*TeamReport, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyTranscript
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: teamReportPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: chatTemperature(s.temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("team report completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("team report completion returned no choices")
	}

	var report TeamReport
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &report); err != nil {
		return nil, fmt.Errorf("parse team report: %w", err)
	}
	return &report, nil
}

// chatTemperature keeps an explicit 0 on the wire: go-openai omits a zero
// temperature and the API then samples at 1.
func chatTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

type openaiSummarizer struct {
	client      *openai.Client
	model       string
	temperature float32
}

func (o *openaiSummarizer) name() string { return "openai" }

func (o *openaiSummarizer) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: chatTemperature(o.temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("empty response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}
