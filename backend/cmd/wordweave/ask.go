package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wordweave/backend/internal/app"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var teach string
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question, or teach an answer with --teach",
		Example: `  wordweave ask "what is a car"
  wordweave ask "what is a car" --teach "a car is a vehicle with four wheels"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				out := cmd.OutOrStdout()
				if teach != "" {
					if !a.Orchestrator.LearnFromUserTeaching(ctx, question, teach) {
						return fmt.Errorf("nothing could be learned from that answer")
					}
					_, err := fmt.Fprintln(out, "Learned.")
					return err
				}
				reply := a.Orchestrator.Respond(ctx, a.Conversations.Get(""), question)
				_, err := fmt.Fprintln(out, reply.Text)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&teach, "teach", "", "answer to learn for the question")
	return cmd
}
