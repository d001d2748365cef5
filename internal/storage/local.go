package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// LocalStore writes images below Root; the router serves Root at BaseURL.
type LocalStore struct {
	Root    string
	BaseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(root, KeyPrefix), 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &LocalStore{Root: root, BaseURL: baseURL}, nil
}

func (s *LocalStore) Save(ctx context.Context, r io.Reader, size int64, mt *mimetype.MIME) (key string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !AllowedImage(mt) {
		return "", fmt.Errorf("unsupported image type %v", mt)
	}
	key = NewKey(mt)
	dst := filepath.Join(s.Root, filepath.FromSlash(key))

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", key, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", key, cerr)
		}
		if err != nil {
			_ = os.Remove(dst)
			key = ""
		}
	}()

	if _, err = io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	return key, nil
}

func (s *LocalStore) URL(key string) string {
	return joinURL(s.BaseURL, key)
}
