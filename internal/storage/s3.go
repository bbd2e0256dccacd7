package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/adri-engine/adri/internal/models"
	"github.com/adri-engine/adri/internal/report"
	"github.com/adri-engine/adri/pkg/logger"
)

// S3API is the slice of the S3 client the publisher needs.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads canonical json reports to a bucket so CI systems and
// dashboards can consume them without access to the runner's filesystem.
type S3Publisher struct {
	client S3API
	logger logger.Logger
	bucket string
	prefix string
}

// NewS3Publisher builds a publisher using the default AWS credential
// chain.
func NewS3Publisher(ctx context.Context, bucket, prefix string, log logger.Logger) (*S3Publisher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return &S3Publisher{
		client: s3.NewFromConfig(cfg),
		logger: log,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// NewS3PublisherWithClient injects a client, mainly for tests.
func NewS3PublisherWithClient(client S3API, bucket, prefix string, log logger.Logger) *S3Publisher {
	return &S3Publisher{client: client, logger: log, bucket: bucket, prefix: prefix}
}

// Key returns the object key a report publishes under.
func (p *S3Publisher) Key(r *models.Report) string {
	return path.Join(p.prefix, r.Source, ReportFileName(r, "json"))
}

// Publish uploads the report's canonical json rendering.
func (p *S3Publisher) Publish(ctx context.Context, r *models.Report) (string, error) {
	f, err := report.GetFormat("json", p.logger)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := f.Render(&buf, r); err != nil {
		return "", err
	}

	key := p.Key(r)
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("uploading report to s3://%s/%s: %w", p.bucket, key, err)
	}

	p.logger.Info("Published report", "bucket", p.bucket, "key", key, "bytes", buf.Len())
	return key, nil
}
