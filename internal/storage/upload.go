package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nguyentantai21042004/meeting-bot/internal/audio"
)

func (s *implService) UploadAudio(ctx context.Context, key string, data []byte, format audio.Format) error {
	return s.put(ctx, key, data, format.ContentType())
}

func (s *implService) UploadText(ctx context.Context, key, text string) error {
	return s.put(ctx, key, []byte(text), "text/plain; charset=utf-8")
}

func (s *implService) UploadMetadata(ctx context.Context, key string, record any) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return &StorageError{Key: key, Err: fmt.Errorf("marshal metadata: %w", err)}
	}
	return s.put(ctx, key, data, "application/json")
}

func (s *implService) put(ctx context.Context, key string, data []byte, contentType string) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.store.Put(ctx, key, data, contentType); err != nil {
		s.logger.Error(ctx, "Upload to %s failed: key=%s error=%v", s.store.Name(), key, err)
		return &StorageError{Key: key, Err: err}
	}

	s.logger.Info(ctx, "Uploaded %s (%d bytes, %s) to %s", key, len(data), contentType, s.store.Name())
	return nil
}
