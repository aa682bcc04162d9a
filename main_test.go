package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"ec2scheduler/configuration"
	"ec2scheduler/errors"
	"ec2scheduler/startStop"
)

type fakeRunner struct {
	report *startStop.RunReport
	err    error
	calls  int
}

func (f *fakeRunner) Run(ctx context.Context) (*startStop.RunReport, error) {
	f.calls++
	return f.report, f.err
}

func tick() events.CloudWatchEvent {
	return events.CloudWatchEvent{
		ID:         "7bf73129-1428-4cd3-a780-95db273d1602",
		DetailType: "Scheduled Event",
		Source:     "aws.events",
		Time:       time.Date(2026, time.June, 15, 8, 0, 0, 0, time.UTC),
	}
}

func TestHandler_Handle(t *testing.T) {
	tests := []struct {
		name        string
		runner      *fakeRunner
		buildErr    error
		expectError bool
		errType     errors.ErrorType
	}{
		{
			name: "successful run",
			runner: &fakeRunner{report: &startStop.RunReport{
				Accounts: []startStop.AccountReport{{AccountID: "111122223333"}},
			}},
		},
		{
			name:   "weekend run",
			runner: &fakeRunner{report: &startStop.RunReport{Weekend: true}},
		},
		{
			name: "account failure fails the invocation",
			runner: &fakeRunner{
				report: &startStop.RunReport{
					Accounts: []startStop.AccountReport{{AccountID: "111122223333", Err: fmt.Errorf("denied")}},
				},
				err: errors.New(errors.ErrDispatch, "account start/stop failed", nil, fmt.Errorf("denied")),
			},
			expectError: true,
			errType:     errors.ErrDispatch,
		},
		{
			name: "schedule load failure",
			runner: &fakeRunner{
				err: errors.New(errors.ErrScheduleFetch, "fetching schedule document failed", nil, fmt.Errorf("NoSuchKey")),
			},
			expectError: true,
			errType:     errors.ErrScheduleFetch,
		},
		{
			name:        "bootstrap failure",
			runner:      &fakeRunner{},
			buildErr:    errors.New(errors.ErrAWSClient, "loading AWS config failed", nil, fmt.Errorf("no region")),
			expectError: true,
			errType:     errors.ErrAWSClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &configuration.Config{AWSRegion: "eu-west-1"}
			h := &handler{
				config: config,
				logger: zap.NewNop(),
				build: func(ctx context.Context, got *configuration.Config, logger *zap.Logger) (runner, error) {
					assert.Same(t, config, got)
					if tt.buildErr != nil {
						return nil, tt.buildErr
					}
					return tt.runner, nil
				},
			}

			err := h.Handle(context.Background(), tick())

			if tt.expectError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.errType))
			} else {
				require.NoError(t, err)
			}

			if tt.buildErr != nil {
				assert.Equal(t, 0, tt.runner.calls)
				return
			}
			assert.Equal(t, 1, tt.runner.calls)
		})
	}
}

func TestApplyLogLevel(t *testing.T) {
	t.Run("info keeps the current logger", func(t *testing.T) {
		current := zap.NewNop()
		assert.Same(t, current, applyLogLevel("info", current))
	})

	t.Run("invalid level is logged and the current logger kept", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		current := zap.New(core)

		got := applyLogLevel("chatty", current)

		assert.Same(t, current, got)
		warnings := logs.FilterMessage("Keeping the info log level").All()
		require.Len(t, warnings, 1)
		assert.Equal(t, "chatty", warnings[0].ContextMap()["level"])
		assert.Contains(t, warnings[0].ContextMap(), "error")
	})

	t.Run("valid level replaces the logger", func(t *testing.T) {
		current := zap.NewNop()
		defer zap.ReplaceGlobals(zap.NewNop())

		got := applyLogLevel("debug", current)

		assert.NotSame(t, current, got)
		assert.True(t, got.Core().Enabled(zap.DebugLevel))
	})
}
