package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/nguyentantai21042004/meeting-bot/internal/config"
	"github.com/nguyentantai21042004/meeting-bot/internal/logger"
)

// S3Store writes objects to any S3 compatible endpoint, including the
// Supabase storage S3 gateway.
type S3Store struct {
	client     *s3.Client
	bucketName string

	logger logger.Logger
}

func NewS3Store(ctx context.Context, cfg config.StorageConfig, l logger.Logger) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.Key, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	endpoint := s3Endpoint(cfg.URL)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Store{
		client:     client,
		bucketName: cfg.Bucket,
		logger:     l,
	}, nil
}

// s3Endpoint maps a bare Supabase project URL onto its S3 gateway and
// passes every other endpoint through untouched.
func s3Endpoint(raw string) string {
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || u.Host == "" {
		return raw
	}
	if strings.HasSuffix(u.Host, ".supabase.co") && (u.Path == "" || u.Path == "/") {
		u.Path = "/storage/v1/s3"
	}
	return u.String()
}

func (s *S3Store) Name() string { return "s3" }

func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		// Conditional write: an existing key fails with 412.
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}

	s.logger.Debug(ctx, "put object bucket=%s key=%s size=%d", s.bucketName, key, len(body))
	return nil
}
