// Package blobstore stores avatar and cover images in S3-compatible object storage.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-videotube/internal/logger"
)

// ErrForeignURL is returned by Delete for URLs that do not point into the store.
var ErrForeignURL = errors.New("url does not belong to the blob store")

// S3API is the subset of the S3 client used by the store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config holds the connection settings of the object storage.
type Config struct {
	Region        string
	Endpoint      string // Custom endpoint, e.g. MinIO; empty for AWS
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string // Prefix of the URLs handed out for stored objects
	UsePathStyle  bool
}

// NewS3Client builds an S3 client with static credentials.
func NewS3Client(ctx context.Context, cfg Config) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// S3Store uploads local files to a bucket and hands out public URLs for them.
type S3Store struct {
	client        S3API
	bucket        string
	publicBaseURL string
	now           func() time.Time
}

// New creates a store writing into bucket.
func New(client S3API, bucket, publicBaseURL string) *S3Store {
	return &S3Store{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}
}

func (s *S3Store) newKey(ext string) string {
	d := s.now()
	return fmt.Sprintf("images/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), strings.ToLower(ext))
}

// Upload stores the file at localPath and returns its public URL.
// The local file is removed afterwards whether or not the upload succeeded.
func (s *S3Store) Upload(ctx context.Context, localPath string) (string, error) {
	defer func() {
		if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.FromContext(ctx).Warnw("failed to remove local file", "path", localPath, "error", err)
		}
	}()

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	ext := filepath.Ext(localPath)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := s.newKey(ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to upload object", "bucket", s.bucket, "key", key, "error", err)
		return "", fmt.Errorf("put object: %w", err)
	}

	url := s.publicBaseURL + "/" + key
	logger.FromContext(ctx).Infow("object uploaded", "bucket", s.bucket, "key", key, "url", url)

	return url, nil
}

// Delete removes the object behind url. An empty url is a no-op.
func (s *S3Store) Delete(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}

	key, ok := strings.CutPrefix(url, s.publicBaseURL+"/")
	if !ok || key == "" {
		return ErrForeignURL
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to delete object", "bucket", s.bucket, "key", key, "error", err)
		return fmt.Errorf("delete object: %w", err)
	}

	logger.FromContext(ctx).Infow("object deleted", "bucket", s.bucket, "key", key)
	return nil
}
