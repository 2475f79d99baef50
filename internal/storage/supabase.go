package storage

import (
	"bytes"
	"context"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseStore writes objects through the Supabase storage REST API.
type SupabaseStore struct {
	url    string
	key    string
	bucket string
}

// NewSupabaseStore accepts either the project URL (https://<ref>.supabase.co)
// or the storage endpoint itself.
func NewSupabaseStore(projectURL, key, bucket string) *SupabaseStore {
	return &SupabaseStore{url: supabaseStorageURL(projectURL), key: key, bucket: bucket}
}

func supabaseStorageURL(projectURL string) string {
	u := strings.TrimRight(projectURL, "/")
	if strings.HasSuffix(u, "/storage/v1") {
		return u
	}
	return u + "/storage/v1"
}

func (s *SupabaseStore) Name() string { return "supabase" }

// client is built per upload: storage-go keeps per-file options in headers
// shared by every call on a client.
func (s *SupabaseStore) client() *storage_go.Client {
	return storage_go.NewClient(s.url, s.key, map[string]string{
		"apikey": s.key,
	})
}

// Put uploads without upsert; an existing key is an error, never overwritten.
// storage-go takes no context and its HTTP client has no timeout, so the
// call runs aside and Put returns when ctx is done. An abandoned request
// finishes in the background.
func (s *SupabaseStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		upsert := false
		_, err := s.client().UploadFile(s.bucket, key, bytes.NewReader(body), storage_go.FileOptions{
			ContentType: &contentType,
			Upsert:      &upsert,
		})
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
