package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"wordweave/backend/internal/app"
	"wordweave/backend/internal/synth"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var method, emotion string
	var minLen, maxLen int
	cmd := &cobra.Command{
		Use:   "generate [seed]",
		Short: "Compose a sentence from the graph",
		Example: `  wordweave generate tea --method conceptual
  wordweave generate --method emotional --emotion happy`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed := ""
			if len(args) == 1 {
				seed = args[0]
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				var sentence string
				switch method {
				case "conceptual":
					sentence = a.Synth.GenerateConceptualSentence(ctx, seed, minLen, maxLen)
				case "relations":
					sentence = a.Synth.GenerateSentenceWithRelations(ctx, seed, minLen, maxLen)
				case "frequency":
					sentence = a.Synth.GenerateFrequencyWalk(ctx, seed, minLen, maxLen)
				case "emotional":
					sentence = a.Synth.GenerateEmotionalSentence(ctx, synth.Emotion(emotion), minLen, maxLen)
				default:
					return fmt.Errorf("unknown method %q", method)
				}
				if sentence == "" {
					return fmt.Errorf("nothing known to say about %q yet", seed)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), sentence)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "conceptual", "conceptual, relations, frequency or emotional")
	cmd.Flags().StringVar(&emotion, "emotion", string(synth.Neutral), "emotion for the emotional method")
	cmd.Flags().IntVar(&minLen, "min", 3, "minimum sentence length in words")
	cmd.Flags().IntVar(&maxLen, "max", 15, "maximum sentence length in words")
	return cmd
}
