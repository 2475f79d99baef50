package storage

import (
	"context"

	"github.com/nguyentantai21042004/meeting-bot/internal/audio"
)

// Service uploads one meeting artifact per call. Calls are independent:
// a failure never rolls back objects written by earlier calls.
type Service interface {
	UploadAudio(ctx context.Context, key string, data []byte, format audio.Format) error
	UploadText(ctx context.Context, key, text string) error
	UploadMetadata(ctx context.Context, key string, record any) error
}

// ObjectStore is a bucket-like backend addressed by slash separated keys.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Name() string
}
