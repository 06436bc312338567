package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	sc "github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

type ActivityLister interface {
	ListActivity(ctx context.Context) ([]models.ActivityRow, error)
}

// ActivityExporter snapshots the joined login activity into object storage.
type ActivityExporter struct {
	source ActivityLister
	config *sc.Config
	now    func() time.Time
}

func NewActivityExporter(source ActivityLister, config *sc.Config) *ActivityExporter {
	return &ActivityExporter{
		source: source,
		config: config,
		now:    time.Now,
	}
}

// ActivityExportKey returns a fresh object key under the day of t.
func ActivityExportKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("activity/%04d/%02d/%02d/%v.json", t.Year(), t.Month(), t.Day(), uuid.New())
}

func (e *ActivityExporter) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(e.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			e.config.S3RootUser,
			e.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(e.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Export writes the activity list as one JSON document and returns its key
// and the number of rows written.
func (e *ActivityExporter) Export(ctx context.Context) (string, int, error) {

	rows, err := e.source.ListActivity(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("error listing activity: %w", err)
	}

	if rows == nil {
		rows = []models.ActivityRow{}
	}

	body, err := json.Marshal(rows)
	if err != nil {
		return "", 0, fmt.Errorf("error encoding activity: %w", err)
	}

	client, err := e.getS3Client(ctx)
	if err != nil {
		return "", 0, err
	}

	bucket := e.config.S3Bucket
	key := ActivityExportKey(e.now())

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        &bucket,
		Key:           &key,
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", 0, fmt.Errorf("error uploading %s: %w", key, err)
	}

	return key, len(rows), nil
}
