package main

import (
	"context"

	"github.com/spf13/cobra"

	"wordweave/backend/internal/app"
	"wordweave/backend/internal/scheduler"
)

func newCycleCmd(opts *rootOptions) *cobra.Command {
	var force bool
	var times int
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Run learning cycles",
		Long: `Run the learning cycle. Without --force the scheduler's active flag and
interval gate apply, as they do for the server ticker.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				for i := 0; i < max(times, 1); i++ {
					var report scheduler.CycleReport
					if force {
						report = a.Scheduler.ForceCycle(ctx)
					} else {
						report = a.Scheduler.Cycle(ctx)
					}
					if err := printJSON(cmd.OutOrStdout(), report); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", true, "bypass the active flag and interval gate")
	cmd.Flags().IntVarP(&times, "times", "n", 1, "number of cycles to run")
	return cmd
}
