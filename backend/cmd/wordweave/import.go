package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"wordweave/backend/internal/app"
	"wordweave/backend/internal/graph"
	"wordweave/backend/internal/sqlstore"
	"wordweave/backend/internal/store"
	"wordweave/backend/pkg/config"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var from, path, uri, user, password string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import relations and definitions from another store",
		Long: `Replay every relation and definition of a source store through the
learning rules of the configured one. Rows that fail validation are counted
as rejected.`,
		Example: `  wordweave import --from sqlite --path old.db
  wordweave import --from neo4j --uri bolt://localhost:7687`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				src, err := openSource(ctx, from, path, uri, user, password)
				if err != nil {
					return err
				}
				defer src.Close(ctx)

				report, err := a.Relations.Import(ctx, src)
				if err != nil {
					return fmt.Errorf("import failed: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", config.BackendSQLite, "source backend (sqlite, neo4j)")
	cmd.Flags().StringVar(&path, "path", "", "source SQLite file")
	cmd.Flags().StringVar(&uri, "uri", "bolt://localhost:7687", "source Neo4j URI")
	cmd.Flags().StringVar(&user, "user", "neo4j", "source Neo4j user")
	cmd.Flags().StringVar(&password, "password", "", "source Neo4j password")
	return cmd
}

func openSource(ctx context.Context, from, path, uri, user, password string) (store.Backend, error) {
	switch from {
	case config.BackendSQLite:
		if path == "" {
			return nil, fmt.Errorf("--path is required for a sqlite source")
		}
		return sqlstore.Open(path)
	case config.BackendNeo4j:
		return graph.Connect(ctx, uri, user, password)
	}
	return nil, fmt.Errorf("unsupported source %q", from)
}
