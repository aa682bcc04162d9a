package configuration_test

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"ec2scheduler/configuration"
	"ec2scheduler/errors"
)

// createTempEnvFile writes a temporary .env file and returns its path
func createTempEnvFile(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "scheduler-*.env")
	if err != nil {
		t.Fatalf("failed to create temp env file: %v", err)
	}

	_, err = tmpFile.WriteString(content)
	if err != nil {
		t.Fatalf("failed to write to temp env file: %v", err)
	}

	err = tmpFile.Close()
	if err != nil {
		t.Fatalf("failed to close temp env file: %v", err)
	}

	return tmpFile.Name()
}

func TestInitialize_TableDriven(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		envFile    string // if set, will write a .env file with this content
		expectErr  bool
		errType    errors.ErrorType
		assertions func(*testing.T, *configuration.Config)
	}{
		{
			name: "Defaults",
			env: map[string]string{
				"AWS_REGION":      "",
				"LOG_LEVEL":       "",
				"CONFIG_ROLE_ARN": "",
				"DRY_RUN":         "",
				"PUSHGATEWAY_URL": "",
			},
			expectErr: false,
			assertions: func(t *testing.T, cfg *configuration.Config) {
				assert.Equal(t, "us-east-1", cfg.AWSRegion)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, "hermes-sharedservices-data", cfg.ConfigBucket)
				assert.Equal(t, "Lambdas/start-stop/config.json", cfg.ConfigKey)
				assert.Empty(t, cfg.ConfigRoleARN)
				assert.Equal(t, "Ec2-Start-Stop-Lambda-Session-Role", cfg.ConfigSessionName)
				assert.Equal(t, "Lambda-Start-Stop-functionality", cfg.RoleSessionName)
				assert.False(t, cfg.DryRun)
				assert.Empty(t, cfg.PushgatewayURL)
				assert.Equal(t, "ec2_start_stop", cfg.MetricsJob)
			},
		},
		{
			name: "Valid configuration from environment variables",
			env: map[string]string{
				"AWS_REGION":      "eu-west-2",
				"LOG_LEVEL":       "debug",
				"CONFIG_BUCKET":   "ops-config",
				"CONFIG_KEY":      "scheduler/config.hcl",
				"CONFIG_ROLE_ARN": "arn:aws:iam::111122223333:role/ScheduleReader",
				"DRY_RUN":         "true",
				"LOCALSTACK_URL":  "http://localhost:4566",
				"PUSHGATEWAY_URL": "http://pushgateway:9091",
			},
			expectErr: false,
			assertions: func(t *testing.T, cfg *configuration.Config) {
				assert.Equal(t, "eu-west-2", cfg.AWSRegion)
				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, "ops-config", cfg.ConfigBucket)
				assert.Equal(t, "scheduler/config.hcl", cfg.ConfigKey)
				assert.Equal(t, "arn:aws:iam::111122223333:role/ScheduleReader", cfg.ConfigRoleARN)
				assert.True(t, cfg.DryRun)
				assert.Equal(t, "http://localhost:4566", cfg.LocalstackURL)
				assert.Equal(t, "http://pushgateway:9091", cfg.PushgatewayURL)
			},
		},
		{
			name: "Configuration from temp .env file",
			envFile: `
AWS_REGION=ap-south-1
CONFIG_BUCKET=envfile-bucket
CONFIG_KEY=envfile/config.yaml
ROLE_SESSION_NAME=envfile-session
DRY_RUN=True
`,
			expectErr: false,
			assertions: func(t *testing.T, cfg *configuration.Config) {
				assert.Equal(t, "ap-south-1", cfg.AWSRegion)
				assert.Equal(t, "envfile-bucket", cfg.ConfigBucket)
				assert.Equal(t, "envfile/config.yaml", cfg.ConfigKey)
				assert.Equal(t, "envfile-session", cfg.RoleSessionName)
				assert.True(t, cfg.DryRun)
			},
		},
		{
			name: "Invalid CONFIG_ROLE_ARN from env",
			env: map[string]string{
				"CONFIG_ROLE_ARN": "not-an-arn",
			},
			expectErr: true,
			errType:   errors.ErrConfigInvalid,
		},
		{
			name: "Invalid LOG_LEVEL from env",
			env: map[string]string{
				"LOG_LEVEL": "chatty",
			},
			expectErr: true,
			errType:   errors.ErrConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()

			// Write .env file if content is specified
			if tt.envFile != "" {
				viper.SetConfigFile(createTempEnvFile(t, tt.envFile))
			}

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := configuration.Initialize()
			if tt.expectErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, tt.errType))
				return
			}
			assert.NoError(t, err)
			if tt.assertions != nil {
				tt.assertions(t, cfg)
			}
		})
	}
}
