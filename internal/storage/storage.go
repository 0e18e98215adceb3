// Package storage provides presigned MinIO uploads for course thumbnails
// and user avatars.
package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"learnhub_backend/platform/apperr"
	"learnhub_backend/platform/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PresignedURLTTL is the expiration time for presigned URLs.
const PresignedURLTTL = 15 * time.Minute

// Images are the only uploads this platform accepts.
var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// PresignedURL is a signed upload or download grant.
type PresignedURL struct {
	URL       string
	FileKey   string
	ExpiresAt time.Time
}

// Service issues presigned URLs against MinIO buckets.
type Service struct {
	client           *minio.Client
	maxFileSize      int64
	bucketThumbnails string
	bucketAvatars    string
}

// New creates the storage service. Returns an error when MinIO is not
// configured; callers treat a nil service as uploads-disabled.
func New(cfg config.StorageConfig) (*Service, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("minio is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &Service{
		client:           client,
		maxFileSize:      cfg.GetMinIOMaxFileSize(),
		bucketThumbnails: cfg.GetBucketThumbnails(),
		bucketAvatars:    cfg.GetBucketAvatars(),
	}, nil
}

// EnsureBuckets creates the configured buckets if they do not exist.
func (s *Service) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{s.bucketThumbnails, s.bucketAvatars} {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
	}
	return nil
}

// PresignThumbnailUpload issues an upload grant for a course thumbnail.
func (s *Service) PresignThumbnailUpload(ctx context.Context, courseID uuid.UUID, fileName, contentType string, sizeBytes int64) (*PresignedURL, error) {
	return s.presignUpload(ctx, s.bucketThumbnails, courseID.String(), fileName, contentType, sizeBytes)
}

// PresignAvatarUpload issues an upload grant for a user avatar.
func (s *Service) PresignAvatarUpload(ctx context.Context, userID uuid.UUID, fileName, contentType string, sizeBytes int64) (*PresignedURL, error) {
	return s.presignUpload(ctx, s.bucketAvatars, userID.String(), fileName, contentType, sizeBytes)
}

func (s *Service) presignUpload(ctx context.Context, bucket, folder, fileName, contentType string, sizeBytes int64) (*PresignedURL, error) {
	if !allowedContentTypes[strings.ToLower(contentType)] {
		return nil, apperr.Validation("Only JPEG, PNG, WebP, and GIF images are allowed")
	}
	if sizeBytes <= 0 || sizeBytes > s.maxFileSize {
		return nil, apperr.Validation(fmt.Sprintf("File size must be between 1 and %d bytes", s.maxFileSize))
	}

	// UUID fragment in the key prevents overwrites on repeated uploads.
	ext := path.Ext(fileName)
	baseName := strings.TrimSuffix(fileName, ext)
	uniqueFileName := fmt.Sprintf("%s_%s%s", baseName, uuid.New().String()[:8], ext)
	fileKey := filepath.ToSlash(filepath.Join(folder, uniqueFileName))

	expiresAt := time.Now().Add(PresignedURLTTL)
	presignedURL, err := s.client.PresignedPutObject(ctx, bucket, fileKey, PresignedURLTTL)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	return &PresignedURL{
		URL:       presignedURL.String(),
		FileKey:   fileKey,
		ExpiresAt: expiresAt,
	}, nil
}

// DeleteObject removes an object, used when a course or avatar is replaced.
func (s *Service) DeleteObject(ctx context.Context, bucket, fileKey string) error {
	if err := s.client.RemoveObject(ctx, bucket, fileKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object %s: %w", fileKey, err)
	}
	return nil
}
