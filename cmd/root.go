package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ec2scheduler/configuration"
	"ec2scheduler/logger"
	"ec2scheduler/schedule"
	"ec2scheduler/startStop"
)

const (
	packageName = "main"
)

var version = "0.1.0"

// scheduler is the part of startStop.Service the commands drive
type scheduler interface {
	Run(ctx context.Context) (*startStop.RunReport, error)
	LoadSchedule(ctx context.Context) (*schedule.Config, error)
}

type serviceFactory func(ctx context.Context, config *configuration.Config, now func() time.Time, logger *zap.Logger) (scheduler, error)

func newService(ctx context.Context, config *configuration.Config, now func() time.Time, logger *zap.Logger) (scheduler, error) {
	service, err := startStop.NewServiceFromConfig(ctx, config, now, logger)
	if err != nil {
		return nil, err
	}
	return service, nil
}

// app carries what every subcommand needs once the root has set up logging and configuration
type app struct {
	config   *configuration.Config
	logger   *zap.Logger
	factory  serviceFactory
	logLevel string
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithFactory(newService)
}

func newRootCmdWithFactory(factory serviceFactory) *cobra.Command {
	a := &app{factory: factory}

	rootCmd := &cobra.Command{
		Use:   "ec2scheduler",
		Short: "Start and stop tagged EC2 instances across accounts",
		Long: `ec2scheduler starts and stops EC2 instances in every configured account
according to their "Schedule" and "NoShutdown" tags.

The schedule document is read from S3 (CONFIG_BUCKET/CONFIG_KEY); runtime
settings come from the environment or a .env file.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	rootCmd.AddCommand(newRunCmd(a), newValidateCmd(a))
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := logger.Initialize("info"); err != nil {
		return err
	}

	config, err := configuration.Initialize()
	if err != nil {
		return err
	}

	level := config.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	if err := logger.Initialize(level); err != nil {
		return err
	}

	a.config = config
	a.logger = logger.ForPackage(packageName)
	a.logger.Debug("Configuration loaded",
		zap.String("operation", "config_load"),
		zap.String("region", config.AWSRegion),
		zap.String("bucket", config.ConfigBucket),
		zap.String("key", config.ConfigKey),
	)
	return nil
}
