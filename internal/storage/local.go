package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore mirrors the bucket layout under a directory. Used for
// development and in tests.
type LocalStore struct {
	root string
}

func NewLocalStore(dir, bucket string) (*LocalStore, error) {
	root := filepath.Join(dir, bucket)
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Name() string { return "local" }

// Put refuses to overwrite, matching the Supabase backend.
func (s *LocalStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
