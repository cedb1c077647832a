package export

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pakarguru/modulajar/internal/config"
	"github.com/pakarguru/modulajar/internal/docx"
)

// PutObjectAPI is the part of *s3.Client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client creates a client for an S3-compatible endpoint.
func NewS3Client(ctx context.Context, cfg config.ExportConfig) (*s3.Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.S3Endpoint,
				SigningRegion:     cfg.S3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

// Uploader stores exported documents in a bucket.
type Uploader struct {
	client   PutObjectAPI
	endpoint string
	bucket   string
	prefix   string
	log      *zap.Logger
}

func NewUploader(client PutObjectAPI, cfg config.ExportConfig, log *zap.Logger) *Uploader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Uploader{
		client:   client,
		endpoint: strings.TrimRight(cfg.S3Endpoint, "/"),
		bucket:   cfg.S3Bucket,
		prefix:   strings.Trim(cfg.S3Prefix, "/"),
		log:      log.Named("export"),
	}
}

// Upload stores data under <prefix>/<uuid>/<name> and returns the object
// link.
func (u *Uploader) Upload(ctx context.Context, name string, data []byte) (string, error) {
	key := path.Join(u.prefix, uuid.NewString(), name)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(docx.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	link := fmt.Sprintf("%s/%s/%s", u.endpoint, u.bucket, escapeKey(key))
	u.log.Info("document uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
	return link, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
