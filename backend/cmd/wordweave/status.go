package main

import (
	"context"

	"github.com/spf13/cobra"

	"wordweave/backend/internal/app"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var activity bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show learning status and graph statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				out := map[string]any{
					"status":  a.Scheduler.Status(),
					"backend": a.Backend.State(),
					"words":   len(a.Relations.KnownWords()),
				}
				if activity {
					entries, err := a.Scheduler.ActivityLog()
					if err != nil {
						return err
					}
					out["activity"] = entries
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().BoolVar(&activity, "activity", false, "include the recent activity log")
	return cmd
}
