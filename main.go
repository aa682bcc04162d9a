package main

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"ec2scheduler/configuration"
	"ec2scheduler/errors"
	"ec2scheduler/logger"
	"ec2scheduler/startStop"
)

const (
	packageName = "main"
)

// runner is the part of startStop.Service the handler drives
type runner interface {
	Run(ctx context.Context) (*startStop.RunReport, error)
}

type serviceBuilder func(ctx context.Context, config *configuration.Config, logger *zap.Logger) (runner, error)

func buildService(ctx context.Context, config *configuration.Config, logger *zap.Logger) (runner, error) {
	service, err := startStop.NewServiceFromConfig(ctx, config, nil, logger)
	if err != nil {
		return nil, err
	}
	return service, nil
}

// handler runs one scheduling pass per EventBridge tick. Assumed-role
// credentials expire, so the service is rebuilt on every invocation.
type handler struct {
	config *configuration.Config
	build  serviceBuilder
	logger *zap.Logger
}

func (h *handler) Handle(ctx context.Context, event events.CloudWatchEvent) error {
	h.logger.Info("Invocation received",
		zap.String("operation", "invoke"),
		zap.String("event_id", event.ID),
		zap.String("source", event.Source),
		zap.Time("event_time", event.Time),
	)

	service, err := h.build(ctx, h.config, h.logger)
	if err != nil {
		h.logger.Error("Failed to build the scheduler",
			zap.String("operation", "bootstrap"),
			zap.Error(err),
		)
		return err
	}

	started := time.Now()
	report, err := service.Run(ctx)
	if report != nil {
		h.logger.Info("Invocation finished",
			zap.String("operation", "invoke"),
			zap.Int("accounts", len(report.Accounts)),
			zap.Int("failed_accounts", len(report.Failed())),
			zap.Bool("weekend", report.Weekend),
			zap.Duration("elapsed", time.Since(started)),
		)
	}
	return err
}

func main() {
	// Initialize logger
	if err := logger.Initialize("info"); err != nil {
		panic(errors.New(errors.ErrConfigParse, "Failed to initialize logger",
			map[string]interface{}{
				"operation": "logger_init",
			}, err))
	}
	defer logger.Sync()

	log := logger.ForPackage(packageName)

	// Load configuration
	config, err := configuration.Initialize()
	if err != nil {
		log.Fatal("Failed to load configuration",
			zap.String("operation", "config_load"),
			zap.Error(err),
		)
	}

	log = applyLogLevel(config.LogLevel, log)

	h := &handler{
		config: config,
		build:  buildService,
		logger: log,
	}
	lambda.Start(h.Handle)
}

// applyLogLevel rebuilds the global logger for a non-default level. When the
// level cannot be applied the current logger is kept and the failure is logged.
func applyLogLevel(level string, log *zap.Logger) *zap.Logger {
	if level == "info" {
		return log
	}
	if err := logger.Initialize(level); err != nil {
		log.Warn("Keeping the info log level",
			zap.String("operation", "logger_init"),
			zap.String("level", level),
			zap.Error(err),
		)
		return log
	}
	return logger.ForPackage(packageName)
}
