package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"wordweave/backend/internal/app"
	"wordweave/backend/pkg/config"
	"wordweave/backend/pkg/logger"
)

type rootOptions struct {
	backend  string
	logLevel string
}

// openApp builds the knowledge graph; tests replace it.
var openApp = func(ctx context.Context, cfg *config.Config) (*app.App, error) {
	return app.New(ctx, cfg)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "wordweave",
		Short: "WordWeave: a self-updating lexical knowledge graph",
		Long: `WordWeave learns synonyms, antonyms, associations and definitions from
text, strengthens co-occurrence connections in the background and composes
sentences from what it knows.

Configuration comes from the environment (and a .env file when present);
flags override it.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "persistence backend (memory, sqlite, neo4j)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newImportCmd(opts),
		newCycleCmd(opts),
		newStatusCmd(opts),
		newGenerateCmd(opts),
		newAskCmd(opts),
		newSeedCmd(opts),
	)
	return root
}

// withApp loads configuration, opens the graph, runs fn and closes it.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.backend != "" {
		cfg.Backend = opts.backend
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if err := logger.Init(cfg.Env, opts.logLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
