package transcription

import (
	"bytes"
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Transcribe uploads the audio to Whisper and returns the plain text.
func (s *implService) Transcribe(ctx context.Context, data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", &TranscriptionError{Err: errors.New("audio is empty")}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.logger.Info(ctx, "Transcribing %s (%d bytes) with %s", filename, len(data), s.transcribeModel)

	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.transcribeModel,
		FilePath: filename,
		Reader:   bytes.NewReader(data),
		Language: s.speechLanguage,
	})
	if err != nil {
		return "", &TranscriptionError{Err: err}
	}

	text := strings.TrimSpace(resp.Text)
	s.logger.Info(ctx, "Transcription completed: %d characters", len([]rune(text)))
	return text, nil
}
