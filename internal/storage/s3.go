// Package storage stores uploaded files (images, PDFs) in S3 and hands out
// short-lived presigned URLs for reading them back.
package storage

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"secondbrain/internal/apperr"
)

const presignTTL = 15 * time.Minute

type Store struct {
	client    *s3.Client
	uploader  *manager.Uploader
	presigner *s3.PresignClient
	bucket    string
	log       *slog.Logger
}

func New(ctx context.Context, region, accessKey, secretKey, bucket string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg)
	return &Store{
		client:    client,
		uploader:  manager.NewUploader(client),
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		log:       log,
	}, nil
}

// ObjectKey builds a collision-free key, prefixed by media class so bucket
// lifecycle rules can treat images and documents differently.
func ObjectKey(mimeType, fileName string) string {
	prefix := "pdfs"
	if strings.HasPrefix(mimeType, "image/") {
		prefix = "images"
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	return prefix + "/" + uuid.NewString() + ext
}

func (s *Store) Upload(ctx context.Context, key, mimeType string, data []byte) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		s.log.Error("s3 upload failed", "key", key, "error", err)
		return apperr.Upstream("file upload failed", err)
	}
	return nil
}

// PresignGet returns a time-limited URL for downloading the object.
func (s *Store) PresignGet(ctx context.Context, key string) (string, error) {
	out, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", apperr.Upstream("failed to presign file url", err)
	}
	return out.URL, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.log.Warn("s3 delete failed", "key", key, "error", err)
		return apperr.Upstream("file delete failed", err)
	}
	return nil
}
