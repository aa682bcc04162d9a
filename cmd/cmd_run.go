package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ec2scheduler/errors"
	"ec2scheduler/startStop"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		dryRun bool
		at     string
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one start/stop pass over every configured account",
		Example: `  ec2scheduler run                                # Act on the current time
  ec2scheduler run --dry-run                      # Check permissions, change nothing
  ec2scheduler run --at 2026-06-15T20:00:00Z      # Pretend it is the evening`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("dry-run") {
				a.config.DryRun = dryRun
			}

			now, err := fixedClock(at)
			if err != nil {
				return err
			}

			service, err := a.factory(cmd.Context(), a.config, now, a.logger)
			if err != nil {
				return err
			}

			report, err := service.Run(cmd.Context())
			if report != nil {
				printReport(cmd.OutOrStdout(), report)
			}
			if err != nil {
				a.logger.Error("Run finished with errors",
					zap.String("operation", "run"),
					zap.Error(err),
				)
			}
			return err
		},
	}

	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Send EC2 calls with DryRun set; overrides DRY_RUN")
	runCmd.Flags().StringVar(&at, "at", "", "Use this RFC3339 time instead of the current time")
	return runCmd
}

// fixedClock returns nil for an empty value, which means the real clock
func fixedClock(at string) (func() time.Time, error) {
	if at == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return nil, errors.New(errors.ErrConfigInvalid, "--at must be an RFC3339 time",
			map[string]interface{}{
				"at": at,
			}, err)
	}
	parsed = parsed.UTC()
	return func() time.Time { return parsed }, nil
}

func printReport(w io.Writer, report *startStop.RunReport) {
	if report.Weekend {
		fmt.Fprintln(w, "Weekend: no account was processed")
		return
	}
	for _, account := range report.Accounts {
		name := account.AccountName
		if name == "" {
			name = account.RoleARN
		}
		switch {
		case account.Err != nil:
			fmt.Fprintf(w, "%s: failed: %v\n", name, account.Err)
		case account.Result == nil || account.Result.Action == startStop.ActionNone:
			fmt.Fprintf(w, "%s: outside the start/stop window\n", name)
		default:
			fmt.Fprintf(w, "%s: %s %d instance(s), %d untagged stopped\n",
				name, account.Result.Action, len(account.Result.Acted), account.Result.UntaggedStopped)
		}
	}
}
