package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/hanjob/resume-api/pkg/logger"
	"github.com/hanjob/resume-api/pkg/metrics"
)

// S3Config configures an S3-compatible bucket.
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Endpoint        string
	Region          string
}

// S3Client stores attachments in an S3-compatible bucket.
type S3Client struct {
	s3Client   *s3.Client
	bucketName string
}

// NewS3Client creates a client for cfg.Bucket.
func NewS3Client(cfg S3Config) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "ap-northeast-2"
	}

	opts := s3.Options{
		Region: cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	logger.Info("Object storage client initialized",
		zap.String("bucket", cfg.Bucket),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("region", cfg.Region),
	)

	return &S3Client{
		s3Client:   s3.New(opts),
		bucketName: cfg.Bucket,
	}, nil
}

// Put uploads body to key. The body is buffered so the request can be signed
// and retried; attachments are capped well below memory limits.
func (s *S3Client) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string, onProgress func(int)) (string, error) {
	start := time.Now()
	operation := "putObject"

	data, err := io.ReadAll(body)
	if err != nil {
		recordStorage(operation, "error", start)
		return "", fmt.Errorf("failed to read upload body: %w", err)
	}
	if size <= 0 {
		size = int64(len(data))
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	contentType = sniffContentType(contentType, head)

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(key),
		Body:          newProgressReader(bytes.NewReader(data), size, onProgress),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})

	duration := metrics.MeasureDuration(start)
	if err != nil {
		recordStorage(operation, "error", start)
		logger.LogAPICall(ctx, "object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	recordStorage(operation, "success", start)
	logger.LogAPICall(ctx, "object_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(data)),
	)
	if onProgress != nil {
		onProgress(100)
	}
	return contentType, nil
}

// Delete removes key from the bucket. S3 reports success for missing keys.
func (s *S3Client) Delete(ctx context.Context, key string) error {
	start := time.Now()
	operation := "deleteObject"

	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})

	duration := metrics.MeasureDuration(start)
	if err != nil {
		recordStorage(operation, "error", start)
		logger.LogAPICall(ctx, "object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return fmt.Errorf("failed to delete object: %w", err)
	}

	recordStorage(operation, "success", start)
	logger.LogAPICall(ctx, "object_storage", operation, "success", duration, zap.String("key", key))
	return nil
}
