package startStop

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ec2scheduler/awsd"
	"ec2scheduler/clock"
	"ec2scheduler/configuration"
	"ec2scheduler/metrics"
	"ec2scheduler/schedule"
)

// brokerClients adapts the credential broker to ClientFactory
type brokerClients struct {
	broker *awsd.CredentialBroker
}

func (b brokerClients) ComputeClient(ctx context.Context, roleARN, sessionName string) (ComputeClient, error) {
	client, err := b.broker.EC2Client(ctx, roleARN, sessionName)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// NewServiceFromConfig wires the AWS clients, the schedule loader, the clock
// and the metrics recorder from the runtime configuration. A nil now uses the
// current UTC time.
func NewServiceFromConfig(ctx context.Context, cfg *configuration.Config, now func() time.Time, logger *zap.Logger) (*Service, error) {
	awsCfg, err := awsd.LoadAWSConfig(ctx, cfg.AWSRegion)
	if err != nil {
		return nil, err
	}

	broker := awsd.NewCredentialBroker(
		awsCfg,
		awsd.NewSTSClient(awsCfg, cfg.LocalstackURL),
		cfg.LocalstackURL,
		cfg.DryRun,
		logger.With(zap.String("package", "awsd")),
	)

	s3Client, err := broker.S3Client(ctx, cfg.ConfigRoleARN, cfg.ConfigSessionName)
	if err != nil {
		return nil, err
	}

	loader := schedule.NewLoader(s3Client, cfg.ConfigBucket, cfg.ConfigKey, logger.With(zap.String("package", "schedule")))
	recorder := metrics.NewRecorder(cfg.PushgatewayURL, cfg.MetricsJob, logger.With(zap.String("package", "metrics")))

	logger.Info("Scheduler wired",
		zap.String("operation", "bootstrap"),
		zap.String("region", cfg.AWSRegion),
		zap.String("bucket", cfg.ConfigBucket),
		zap.String("key", cfg.ConfigKey),
		zap.Bool("dry_run", cfg.DryRun),
	)

	return NewService(
		loader,
		brokerClients{broker: broker},
		clock.NewResolver(now),
		recorder,
		cfg.RoleSessionName,
		logger.With(zap.String("package", "startStop")),
	), nil
}
