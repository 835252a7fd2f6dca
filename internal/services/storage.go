package services

import (
	"context"
	"io"

	"github.com/gia-feedback/feedback-api/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageService keeps answer attachments in a MinIO bucket. Answer rows only
// carry the stored object name as an opaque file_path.
type StorageService struct {
	client *minio.Client
	bucket string
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return &StorageService{client: client, bucket: cfg.MinIOBucket}, nil
}

func (s *StorageService) Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, name, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *StorageService) Download(ctx context.Context, name string) (*minio.Object, error) {
	return s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
}

func (s *StorageService) Delete(ctx context.Context, name string) error {
	return s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{})
}

// removeAttachments best-effort deletes stored objects after their answer rows
// are gone. Storage may be nil when uploads are disabled; failures only leave
// unreferenced objects behind, so they are logged and not propagated.
func removeAttachments(storage *StorageService, log *zap.Logger, paths []string) {
	if storage == nil || len(paths) == 0 {
		return
	}
	ctx := context.Background()
	for _, path := range paths {
		if err := storage.Delete(ctx, path); err != nil {
			log.Warn("failed to remove answer attachment",
				zap.String("file_path", path),
				zap.Error(err))
		}
	}
}
