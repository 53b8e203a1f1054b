package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"rentshare_backend/internal/imageprocessor"
	"rentshare_backend/internal/logger"
	"rentshare_backend/internal/models"
	"rentshare_backend/internal/storage"
	"rentshare_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

// MediaService stores user uploaded images: listing photos with their resized
// variants, and avatars.
type MediaService interface {
	ValidateImage(file *multipart.FileHeader) error
	StoreListingPhoto(ctx context.Context, file *multipart.FileHeader) (*models.ListingPhoto, error)
	StoreImageBytes(ctx context.Context, prefix, filename string, data []byte) (*models.ListingPhoto, error)
	StoreAvatar(ctx context.Context, userID string, file *multipart.FileHeader) (url, key string, err error)
	// Delete removes stored objects, logging failures.
	Delete(ctx context.Context, keys []string)
}

type MediaConfig struct {
	MaxFileSize  int64
	AllowedTypes []string
	ImageQuality int
}

func DefaultMediaConfig() *MediaConfig {
	return &MediaConfig{
		MaxFileSize:  10 * 1024 * 1024,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp"},
		ImageQuality: 85,
	}
}

type mediaService struct {
	storage   storage.Storage
	processor *imageprocessor.Processor
	config    *MediaConfig
}

func NewMediaService(store storage.Storage, config *MediaConfig) MediaService {
	if config == nil {
		config = DefaultMediaConfig()
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = DefaultMediaConfig().MaxFileSize
	}
	if len(config.AllowedTypes) == 0 {
		config.AllowedTypes = DefaultMediaConfig().AllowedTypes
	}
	return &mediaService{
		storage:   store,
		processor: imageprocessor.NewProcessor(config.ImageQuality),
		config:    config,
	}
}

func (s *mediaService) ValidateImage(file *multipart.FileHeader) error {
	if file == nil {
		return apperrors.NewBadRequestError("No file was submitted")
	}
	if file.Size > s.config.MaxFileSize {
		return apperrors.ErrFileTooLarge
	}

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = getMimeTypeFromFilename(file.Filename)
	}
	if !contains(s.config.AllowedTypes, mimeType) {
		return apperrors.ErrInvalidFileType
	}
	return nil
}

func (s *mediaService) StoreListingPhoto(ctx context.Context, file *multipart.FileHeader) (*models.ListingPhoto, error) {
	data, err := s.readImage(file)
	if err != nil {
		return nil, err
	}
	return s.StoreImageBytes(ctx, "listings", file.Filename, data)
}

// StoreImageBytes saves the original under prefix/yyyy/mm/ plus one object per variant.
// The extension follows the decoded format; filename is only logged.
// Nothing is left behind when any write fails.
func (s *mediaService) StoreImageBytes(ctx context.Context, prefix, filename string, data []byte) (*models.ListingPhoto, error) {
	ext, err := imageprocessor.DetectExtension(data)
	if err != nil {
		return nil, apperrors.ErrInvalidFileType.WithError(err)
	}

	base := newObjectBase(prefix)

	originalKey := base + ext
	if err := s.storage.Save(ctx, originalKey, bytes.NewReader(data), getMimeTypeFromFilename(originalKey)); err != nil {
		return nil, apperrors.InternalError(fmt.Errorf("failed to save photo: %w", err))
	}
	saved := []string{originalKey}
	logger.CtxDebug(ctx, "stored image", "key", originalKey, "filename", filename)

	variants, err := s.processor.Variants(data, imageprocessor.ListingVariants...)
	if err != nil {
		s.Delete(ctx, saved)
		return nil, apperrors.ErrInvalidFileType.WithError(err)
	}

	photo := &models.ListingPhoto{
		ImageURL: s.storage.URL(originalKey),
		ImageKey: originalKey,
		Variants: datatypes.JSONMap{},
	}
	for _, v := range variants {
		key := fmt.Sprintf("%s_%s%s", base, v.Size.Name, v.Ext)
		if err := s.storage.Save(ctx, key, bytes.NewReader(v.Data), v.ContentType); err != nil {
			s.Delete(ctx, saved)
			return nil, apperrors.InternalError(fmt.Errorf("failed to save %s variant: %w", v.Size.Name, err))
		}
		saved = append(saved, key)
		photo.Variants[v.Size.Name] = map[string]interface{}{
			"url": s.storage.URL(key),
			"key": key,
		}
	}
	return photo, nil
}

func (s *mediaService) StoreAvatar(ctx context.Context, userID string, file *multipart.FileHeader) (string, string, error) {
	data, err := s.readImage(file)
	if err != nil {
		return "", "", err
	}
	if !imageprocessor.IsValidImage(data) {
		return "", "", apperrors.ErrInvalidFileType
	}

	variant, err := s.processor.ProcessImage(bytes.NewReader(data), imageprocessor.SizeThumbnail)
	if err != nil {
		return "", "", apperrors.ErrInvalidFileType.WithError(err)
	}
	key := path.Join("avatars", userID, generateSecureRandomString(12)+variant.Ext)
	if err := s.storage.Save(ctx, key, bytes.NewReader(variant.Data), variant.ContentType); err != nil {
		return "", "", apperrors.InternalError(fmt.Errorf("failed to save avatar: %w", err))
	}
	return s.storage.URL(key), key, nil
}

func (s *mediaService) Delete(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := storage.DeleteAll(ctx, s.storage, keys); err != nil {
		logger.CtxWithError(ctx, "failed to delete stored files", err, "keys", keys)
	}
}

func (s *mediaService) readImage(file *multipart.FileHeader) ([]byte, error) {
	if err := s.ValidateImage(file); err != nil {
		return nil, err
	}
	src, err := file.Open()
	if err != nil {
		return nil, apperrors.InternalError(fmt.Errorf("failed to open uploaded file: %w", err))
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, s.config.MaxFileSize+1))
	if err != nil {
		return nil, apperrors.InternalError(fmt.Errorf("failed to read uploaded file: %w", err))
	}
	if int64(len(data)) > s.config.MaxFileSize {
		return nil, apperrors.ErrFileTooLarge
	}
	return data, nil
}

func newObjectBase(prefix string) string {
	now := time.Now().UTC()
	name := fmt.Sprintf("%d_%s", now.UnixNano(), generateSecureRandomString(8))
	return path.Join(prefix, now.Format("2006"), now.Format("01"), name)
}

func getMimeTypeFromFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	mimeTypes := map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
	}

	if mime, ok := mimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

func generateSecureRandomString(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)[:length]
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
