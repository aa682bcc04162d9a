package awsd

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.uber.org/zap"

	"ec2scheduler/errors"
)

// STSAPI is the part of the STS API the broker calls
type STSAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// CredentialBroker exchanges role ARNs for service clients bound to temporary credentials
type CredentialBroker struct {
	sts      STSAPI
	base     aws.Config
	endpoint string
	dryRun   bool
	logger   *zap.Logger
}

func NewCredentialBroker(base aws.Config, stsClient STSAPI, endpoint string, dryRun bool, logger *zap.Logger) *CredentialBroker {
	return &CredentialBroker{
		sts:      stsClient,
		base:     base,
		endpoint: endpoint,
		dryRun:   dryRun,
		logger:   logger,
	}
}

// AssumeRole returns a copy of the base config that signs with the role's temporary credentials
func (b *CredentialBroker) AssumeRole(ctx context.Context, roleARN, sessionName string) (aws.Config, error) {
	output, err := b.sts.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(sessionName),
	})
	if err != nil {
		return aws.Config{}, errors.New(errors.ErrCredentials, "assuming role failed",
			map[string]interface{}{
				"role_arn":     roleARN,
				"session_name": sessionName,
			}, err)
	}
	if output.Credentials == nil {
		return aws.Config{}, errors.New(errors.ErrCredentials, "assume role returned no credentials",
			map[string]interface{}{
				"role_arn": roleARN,
			}, nil)
	}

	creds := output.Credentials
	cfg := b.base.Copy()
	cfg.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		aws.ToString(creds.AccessKeyId),
		aws.ToString(creds.SecretAccessKey),
		aws.ToString(creds.SessionToken),
	))

	b.logger.Info("Role assumed",
		zap.String("operation", "assume_role"),
		zap.String("role_arn", roleARN),
		zap.String("session_name", sessionName),
	)
	return cfg, nil
}

// S3Client returns an S3 client for roleARN, or for the base credentials when roleARN is empty
func (b *CredentialBroker) S3Client(ctx context.Context, roleARN, sessionName string) (*s3.Client, error) {
	cfg := b.base
	if roleARN != "" {
		var err error
		cfg, err = b.AssumeRole(ctx, roleARN, sessionName)
		if err != nil {
			return nil, err
		}
	}
	return s3.NewFromConfig(cfg, s3Endpoint(b.endpoint)), nil
}

// EC2Client returns an EC2 client scoped to the account behind roleARN
func (b *CredentialBroker) EC2Client(ctx context.Context, roleARN, sessionName string) (*AwsClient, error) {
	cfg, err := b.AssumeRole(ctx, roleARN, sessionName)
	if err != nil {
		return nil, err
	}
	return NewEC2ClientWithConfig(cfg, b.dryRun, b.logger.With(zap.String("role_arn", roleARN)), ec2Endpoint(b.endpoint)), nil
}
