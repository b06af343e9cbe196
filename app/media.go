package app

import (
	"context"
	"fmt"
	"io"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Ankur21bera/edemy-backend/app/config"
)

// MediaStore uploads a raw file and returns its public URL.
type MediaStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

type s3MediaStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3MediaStore builds an S3-backed MediaStore from the ambient AWS
// credential chain.
func NewS3MediaStore(ctx context.Context, cfg config.MediaConfig) (MediaStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("media bucket not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &s3MediaStore{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.Bucket,
		baseURL: baseURL,
	}, nil
}

func (m *s3MediaStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: &m.bucket,
		Key:    &key,
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = &contentType
	}

	if _, err := m.client.PutObject(ctx, input); err != nil {
		return "", err
	}
	return m.baseURL + "/" + key, nil
}
