package configuration

import (
	stderrors "errors"
	"io/fs"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ec2scheduler/errors"
)

const (
	packageName = "configuration"
)

// Config holds the runtime settings of the job. The schedule itself lives in
// the remote document pointed at by ConfigBucket and ConfigKey.
type Config struct {
	AWSRegion         string
	LogLevel          string
	ConfigBucket      string
	ConfigKey         string
	ConfigRoleARN     string
	ConfigSessionName string
	RoleSessionName   string
	DryRun            bool
	LocalstackURL     string
	PushgatewayURL    string
	MetricsJob        string
}

// Initialize sets up the configuration system
func Initialize() (*Config, error) {
	logger := zap.L().With(
		zap.String("package", packageName),
		zap.String("function", "Initialize"),
	)

	// Set default values
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CONFIG_BUCKET", "hermes-sharedservices-data")
	viper.SetDefault("CONFIG_KEY", "Lambdas/start-stop/config.json")
	viper.SetDefault("CONFIG_ROLE_ARN", "")
	viper.SetDefault("CONFIG_SESSION_NAME", "Ec2-Start-Stop-Lambda-Session-Role")
	viper.SetDefault("ROLE_SESSION_NAME", "Lambda-Start-Stop-functionality")
	viper.SetDefault("DRY_RUN", false)
	viper.SetDefault("METRICS_JOB", "ec2_start_stop")

	// Configure Viper to read from environment
	viper.AutomaticEnv()

	// Read from .env file unless a caller already pointed viper somewhere else
	if viper.ConfigFileUsed() == "" {
		viper.SetConfigFile(".env")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) && !stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.New(errors.ErrConfigParse, "error reading config file",
				map[string]interface{}{
					"config_file": viper.ConfigFileUsed(),
				}, err)
		}
		logger.Info("No .env file found, using environment variables and defaults",
			zap.String("operation", "config_loading"),
		)
	}

	bucket := viper.GetString("CONFIG_BUCKET")
	if bucket == "" {
		return nil, errors.New(errors.ErrConfigInvalid, "invalid CONFIG_BUCKET",
			map[string]interface{}{
				"config_key": "CONFIG_BUCKET",
			}, nil)
	}

	key := viper.GetString("CONFIG_KEY")
	if key == "" {
		return nil, errors.New(errors.ErrConfigInvalid, "invalid CONFIG_KEY",
			map[string]interface{}{
				"config_key": "CONFIG_KEY",
			}, nil)
	}
	logger.Info("Schedule document location configured",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.String("operation", "config_validation"),
	)

	logLevel := viper.GetString("LOG_LEVEL")
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, errors.New(errors.ErrConfigInvalid, "invalid LOG_LEVEL",
			map[string]interface{}{
				"config_key": "LOG_LEVEL",
				"value":      logLevel,
			}, err)
	}

	roleARN := viper.GetString("CONFIG_ROLE_ARN")
	if roleARN != "" {
		if _, err := arn.Parse(roleARN); err != nil {
			return nil, errors.New(errors.ErrConfigInvalid, "invalid CONFIG_ROLE_ARN",
				map[string]interface{}{
					"config_key": "CONFIG_ROLE_ARN",
					"value":      roleARN,
				}, err)
		}
		logger.Info("Schedule reader role configured",
			zap.String("role_arn", roleARN),
			zap.String("operation", "config_validation"),
		)
	}

	sessionName := viper.GetString("ROLE_SESSION_NAME")
	if sessionName == "" {
		return nil, errors.New(errors.ErrConfigInvalid, "invalid ROLE_SESSION_NAME",
			map[string]interface{}{
				"config_key": "ROLE_SESSION_NAME",
			}, nil)
	}

	config := &Config{
		AWSRegion:         viper.GetString("AWS_REGION"),
		LogLevel:          logLevel,
		ConfigBucket:      bucket,
		ConfigKey:         key,
		ConfigRoleARN:     roleARN,
		ConfigSessionName: viper.GetString("CONFIG_SESSION_NAME"),
		RoleSessionName:   sessionName,
		DryRun:            viper.GetBool("DRY_RUN"),
		LocalstackURL:     viper.GetString("LOCALSTACK_URL"),
		PushgatewayURL:    viper.GetString("PUSHGATEWAY_URL"),
		MetricsJob:        viper.GetString("METRICS_JOB"),
	}

	logger.Info("Configuration loaded successfully",
		zap.String("operation", "config_complete"),
		zap.Bool("dry_run", config.DryRun),
	)
	return config, nil
}
