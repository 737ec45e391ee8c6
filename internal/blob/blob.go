package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/feral-file/ff-minter/internal/adapter"
	"github.com/feral-file/ff-minter/internal/chain"
	"github.com/feral-file/ff-minter/internal/logger"
)

// Uploader stores public documents such as token metadata
//
//go:generate mockgen -source=blob.go -destination=../mocks/blob.go -package=mocks -mock_names=Uploader=MockUploader
type Uploader interface {
	// Upload stores data under key and returns its public URL.
	// An empty content type is detected from the data.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Config holds the bucket layout
type Config struct {
	Bucket        string
	Prefix        string
	PublicBaseURL string
	CacheControl  string
}

type s3Uploader struct {
	cfg    Config
	client adapter.S3Client
}

// NewS3Uploader creates an uploader writing to one bucket
func NewS3Uploader(cfg Config, client adapter.S3Client) Uploader {
	return &s3Uploader{cfg: cfg, client: client}
}

func (u *s3Uploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	objectKey := u.objectKey(key)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}
	if u.cfg.CacheControl != "" {
		input.CacheControl = aws.String(u.cfg.CacheControl)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}

	logger.DebugCtx(ctx, "Uploaded object",
		zap.String("bucket", u.cfg.Bucket),
		zap.String("key", objectKey),
		zap.String("content_type", contentType),
		zap.Int("size", len(data)))

	return chain.PublicURL(u.cfg.PublicBaseURL, key), nil
}

func (u *s3Uploader) objectKey(key string) string {
	key = strings.TrimPrefix(key, "/")
	if u.cfg.Prefix == "" {
		return key
	}
	return strings.TrimSuffix(u.cfg.Prefix, "/") + "/" + key
}
