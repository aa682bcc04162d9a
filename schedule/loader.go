package schedule

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"ec2scheduler/errors"
)

// ObjectGetter is the part of the S3 API the loader needs
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader fetches the schedule document from a fixed bucket and key
type Loader struct {
	client ObjectGetter
	bucket string
	key    string
	logger *zap.Logger
}

func NewLoader(client ObjectGetter, bucket, key string, logger *zap.Logger) *Loader {
	return &Loader{
		client: client,
		bucket: bucket,
		key:    key,
		logger: logger.With(
			zap.String("function", "Load"),
			zap.String("bucket", bucket),
			zap.String("key", key),
		),
	}
}

// Load fetches, parses and validates the schedule document
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	l.logger.Info("Fetching schedule document",
		zap.String("operation", "schedule_fetch"),
	)

	output, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(l.key),
	})
	if err != nil {
		return nil, errors.New(errors.ErrScheduleFetch, "reading the schedule document from S3 failed",
			map[string]interface{}{
				"bucket": l.bucket,
				"key":    l.key,
			}, err)
	}
	defer output.Body.Close()

	body, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, errors.New(errors.ErrScheduleFetch, "reading the schedule document body failed",
			map[string]interface{}{
				"bucket": l.bucket,
				"key":    l.key,
			}, err)
	}

	config, err := Decode(l.key, body)
	if err != nil {
		return nil, err
	}

	l.logger.Info("Schedule document loaded",
		zap.String("operation", "schedule_loaded"),
		zap.String("all_day", config.AllDay.Raw),
		zap.String("half_day", config.HalfDay.Raw),
		zap.Stringer("start", config.Start),
		zap.Stringer("stop", config.Stop),
		zap.Bool("stop_untagged", config.StopUntagged),
		zap.Int("accounts", len(config.RoleARNs)),
	)
	return config, nil
}
