package awsd

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"ec2scheduler/errors"
)

// LoadAWSConfig loads the default credential chain for the given region
func LoadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, errors.New(errors.ErrAWSClient, "loading AWS config failed",
			map[string]interface{}{
				"region": region,
			}, err)
	}
	return cfg, nil
}

// Endpoint overrides point every client at one URL, e.g. LocalStack.
// An empty endpoint leaves the SDK's resolution alone.

func ec2Endpoint(endpoint string) func(*ec2.Options) {
	return func(o *ec2.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}
}

func s3Endpoint(endpoint string) func(*s3.Options) {
	return func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}
}

func stsEndpoint(endpoint string) func(*sts.Options) {
	return func(o *sts.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}
}

// NewSTSClient builds the STS client used to assume every other role
func NewSTSClient(cfg aws.Config, endpoint string) *sts.Client {
	return sts.NewFromConfig(cfg, stsEndpoint(endpoint))
}
