package storage

import (
	"errors"
	"fmt"
)

// NewCloudflareR2Storage configures S3Storage for R2.
// Endpoint format: https://<account_id>.r2.cloudflarestorage.com
func NewCloudflareR2Storage(cfg Config) (*S3Storage, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint is required for Cloudflare R2")
	}
	cfg.Region = "auto"
	// R2 has no object ACLs; public access is a bucket setting
	cfg.PublicRead = false
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("https://%s.r2.dev", cfg.Bucket)
	}
	return NewS3Storage(cfg)
}
