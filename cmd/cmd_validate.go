package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"ec2scheduler/schedule"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Fetch and check the schedule document without touching any instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := a.factory(cmd.Context(), a.config, nil, a.logger)
			if err != nil {
				return err
			}

			cfg, err := service.LoadSchedule(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "s3://%s/%s is valid\n", a.config.ConfigBucket, a.config.ConfigKey)
			printSchedule(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func printSchedule(w io.Writer, cfg *schedule.Config) {
	fmt.Fprintf(w, "all day:   %s\n", cfg.AllDay)
	fmt.Fprintf(w, "half day:  %s\n", cfg.HalfDay)
	fmt.Fprintf(w, "start:     %s\n", cfg.Start)
	fmt.Fprintf(w, "stop:      %s\n", cfg.Stop)
	fmt.Fprintf(w, "untagged:  stop=%t\n", cfg.StopUntagged)
	fmt.Fprintf(w, "accounts:  %d\n", len(cfg.RoleARNs))

	ids := make([]string, 0, len(cfg.AccountNames))
	for id := range cfg.AccountNames {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "  %s  %s\n", id, cfg.AccountNames[id])
	}
}
