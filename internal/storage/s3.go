// Package storage archives run artifacts (result CSVs, run logs) to an
// S3-compatible bucket when one is configured.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/lcouto/saprobot/internal/config"
)

// S3Client wraps AWS S3 operations for artifact archiving
type S3Client struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      *config.S3Config
}

// NewS3Client creates a new S3 client from configuration
func NewS3Client(cfg *config.S3Config) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var awsCfg aws.Config
	var err error

	if cfg.Endpoint != "" {
		// Static credentials for S3-compatible services (MinIO, Wasabi).
		// Region is required by the SDK but unused with custom endpoints.
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion("us-east-1"),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				cfg.SessionToken,
			)),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.IsMinIO()
		})

		return &S3Client{
			client:   client,
			uploader: newUploader(client),
			cfg:      cfg,
		}, nil
	}

	// Default AWS credential chain; region comes from AWS_REGION or the
	// shared AWS config.
	awsCfg, err = awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)

	return &S3Client{
		client:   client,
		uploader: newUploader(client),
		cfg:      cfg,
	}, nil
}

func newUploader(client *s3.Client) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = config.DefaultS3PartSize
		u.Concurrency = 5
	})
}

// UploadStream uploads data from an io.Reader using multipart upload
func (s *S3Client) UploadStream(ctx context.Context, key string, r io.Reader) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   r,
	}

	_, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to upload to S3 (key=%s): %w", key, err)
	}

	return nil
}

// UploadFile uploads a local file under its base name, prefixed per the
// S3 configuration, and returns the key used.
func (s *S3Client) UploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for upload: %w", path, err)
	}
	defer f.Close()

	key := s.cfg.Key(filepath.Base(path))
	if err := s.UploadStream(ctx, key, f); err != nil {
		return "", err
	}
	return key, nil
}

// CheckConnection verifies S3 connectivity and PutObject permissions.
// It uploads a small test object and then deletes it.
func (s *S3Client) CheckConnection(ctx context.Context) error {
	testKey := ".saprobot-connectivity-test"

	putInput := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(testKey),
		Body:   bytes.NewReader([]byte("connectivity check")),
	}

	_, err := s.client.PutObject(ctx, putInput)
	if err != nil {
		return fmt.Errorf("S3 connection check failed: %w", err)
	}

	deleteInput := &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(testKey),
	}

	_, err = s.client.DeleteObject(ctx, deleteInput)
	if err != nil {
		// The upload succeeded, so connectivity is fine
		return fmt.Errorf("S3 connection check succeeded but cleanup failed: %w", err)
	}

	return nil
}
