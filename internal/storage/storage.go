package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var ErrInvalidPath = errors.New("invalid storage path")

// Storage is where uploaded listing photos and avatars end up.
type Storage interface {
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	// URL returns the public URL of a stored object.
	URL(path string) string
}

type Config struct {
	Type       string // local, s3, cloudflare_r2
	BasePath   string // local
	BaseURL    string // public URL prefix
	Bucket     string
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string // r2 or custom s3
	PublicRead bool
}

func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	case "cloudflare_r2":
		return NewCloudflareR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// DeleteAll removes every key and returns the first error, continuing past failures.
func DeleteAll(ctx context.Context, s Storage, keys []string) error {
	var firstErr error
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
