// Package storage issues short-lived read URLs for media held in the blob
// store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"auconnect/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ReadURLTTL is how long a presigned read URL stays valid.
const ReadURLTTL = 5 * time.Minute

// Config holds the connection settings for an S3-compatible bucket.
type Config struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// MediaStore resolves blob names to URLs a browser can fetch.
type MediaStore interface {
	PresignRead(ctx context.Context, blobName string) (string, error)
}

// S3Store presigns GET requests against a single bucket.
type S3Store struct {
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
}

// NewS3Store builds an S3Store. Static credentials are used when both keys
// are set; otherwise the SDK's default credential chain applies.
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("S3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, errors.New("S3 region is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Store{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		ttl:     ReadURLTTL,
	}, nil
}

// PresignRead returns a URL granting read access to blobName for ReadURLTTL.
func (s *S3Store) PresignRead(ctx context.Context, blobName string) (string, error) {
	key, err := normalizeBlobName(blobName)
	if err != nil {
		return "", err
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", models.NewInternalError(fmt.Errorf("presign %s: %w", key, err))
	}
	return req.URL, nil
}

func normalizeBlobName(blobName string) (string, error) {
	key := strings.TrimLeft(strings.TrimSpace(blobName), "/")
	if key == "" {
		return "", models.NewValidationError("blobName is required")
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", models.NewValidationError("invalid blobName")
		}
	}
	return key, nil
}
