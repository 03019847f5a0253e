// Package graph is the Neo4j implementation of store.Backend. Words are
// (:Word {name}) nodes joined by [:RELATION {type}] edges; definitions,
// content rows and Q/A pairs are nodes of their own.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"wordweave/backend/pkg/logger"
)

// Repository handles all Neo4j database operations
type Repository struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext) *Repository {
	return &Repository{
		driver: driver,
		logger: logger.Get().Named("graph"),
	}
}

// Connect dials Neo4j, verifies connectivity and ensures the schema.
func Connect(ctx context.Context, uri, user, password string) (*Repository, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
	}

	r := NewRepository(driver)
	if err := r.EnsureSchema(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}
	r.logger.Info("Neo4j backend ready", zap.String("uri", uri))
	return r, nil
}

var schemaStatements = []string{
	"CREATE CONSTRAINT word_name_unique IF NOT EXISTS FOR (w:Word) REQUIRE w.name IS UNIQUE",
	"CREATE CONSTRAINT content_id_unique IF NOT EXISTS FOR (c:Content) REQUIRE c.id IS UNIQUE",
	"CREATE CONSTRAINT qa_pair_id_unique IF NOT EXISTS FOR (q:QAPair) REQUIRE q.id IS UNIQUE",
	"CREATE INDEX content_word_sentence IF NOT EXISTS FOR (c:Content) ON (c.word, c.sentence)",
	"CREATE INDEX content_category IF NOT EXISTS FOR (c:Content) ON (c.category)",
	"CREATE INDEX qa_pair_created IF NOT EXISTS FOR (q:QAPair) ON (q.created_at)",
}

// EnsureSchema creates the constraints and indexes the queries rely on.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	for _, stmt := range schemaStatements {
		result, err := session.Run(ctx, stmt, nil)
		if err != nil {
			return fmt.Errorf("failed to apply schema %q: %w", stmt, err)
		}
		if _, err := result.Consume(ctx); err != nil {
			return fmt.Errorf("failed to apply schema %q: %w", stmt, err)
		}
	}
	return nil
}

// Close closes the Neo4j driver connection
func (r *Repository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// collect runs a read query and maps every record with fn.
func collect[T any](ctx context.Context, r *Repository, query string, params map[string]interface{}, fn func(*neo4j.Record) T) ([]T, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	var out []T
	for result.Next(ctx) {
		out = append(out, fn(result.Record()))
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// write runs a single write query and discards its records.
func (r *Repository) write(ctx context.Context, query string, params map[string]interface{}) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}

// cypherLimit maps a non-positive limit to "no limit".
func cypherLimit(limit int) int64 {
	if limit <= 0 {
		return 1 << 62
	}
	return int64(limit)
}
