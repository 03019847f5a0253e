// Package app assembles the knowledge graph from configuration. The HTTP
// server, the Discord bot and the CLI all start from New.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"wordweave/backend/internal/agent"
	"wordweave/backend/internal/cache"
	"wordweave/backend/internal/connections"
	"wordweave/backend/internal/constants"
	"wordweave/backend/internal/graph"
	"wordweave/backend/internal/learner"
	"wordweave/backend/internal/scheduler"
	"wordweave/backend/internal/sqlstore"
	"wordweave/backend/internal/store"
	"wordweave/backend/internal/synth"
	"wordweave/backend/pkg/config"
	"wordweave/backend/pkg/logger"
)

// App holds every wired component
type App struct {
	Config        *config.Config
	Backend       *store.BreakerBackend
	Cache         *cache.BadgerCache
	Relations     *store.RelationStore
	Connections   *connections.Tracker
	Patterns      *learner.PatternMemory
	Learner       *learner.AssociationLearner
	Synth         *synth.Synthesizer
	Scheduler     *scheduler.Scheduler
	Orchestrator  *agent.Orchestrator
	Conversations *agent.Conversations

	logger *zap.Logger
}

// OpenBackend connects the backend named in cfg.Backend.
func OpenBackend(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemoryBackend(), nil
	case config.BackendSQLite:
		return sqlstore.Open(cfg.SQLitePath)
	case config.BackendNeo4j:
		return graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// New opens the backend and cache, builds the components and warms them
// from persisted state.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.Get().Named("app")

	inner, err := OpenBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Backend, err)
	}
	backend := store.NewBreakerBackend(inner, cfg.Backend, store.BreakerSettings{
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		TripRatio:   cfg.BreakerTripRatio,
	})

	c, err := cache.Open(cfg.CacheDir, cfg.CacheTTL)
	if err != nil {
		_ = backend.Close(ctx)
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	a := assemble(cfg, backend, c)
	a.logger = log
	a.warm(ctx)

	log.Info("Knowledge graph ready",
		zap.String("backend", cfg.Backend),
		zap.Int("known_words", len(a.Relations.KnownWords())),
		zap.Int("connections", a.Connections.Count()),
		zap.Int("patterns", a.Patterns.Len()),
	)
	return a, nil
}

func assemble(cfg *config.Config, backend *store.BreakerBackend, c *cache.BadgerCache) *App {
	rng := newLockedRand(cfg.RandomSeed)

	relations := store.NewRelationStore(backend, c, store.Options{
		CacheTTL: cfg.CacheTTL,
		Language: cfg.Language,
	})
	tracker := connections.NewTracker(c, cfg.CacheTTL, rng)
	patterns := learner.NewPatternMemory()
	lrn := learner.New(relations, patterns)
	gen := synth.New(relations, patterns, rng)

	sched := scheduler.New(scheduler.Deps{
		Content:     backend,
		Relations:   relations,
		Learner:     lrn,
		Generator:   gen,
		Connections: tracker,
		Patterns:    patterns,
		Cache:       c,
		Rand:        rng,
	}, scheduler.Options{
		IntervalSeconds: cfg.LearningIntervalSeconds,
		LearningRate:    cfg.LearningRate,
		Language:        cfg.Language,
		CacheTTL:        cfg.CacheTTL,
	})

	return &App{
		Config:        cfg,
		Backend:       backend,
		Cache:         c,
		Relations:     relations,
		Connections:   tracker,
		Patterns:      patterns,
		Learner:       lrn,
		Synth:         gen,
		Scheduler:     sched,
		Orchestrator:  agent.NewOrchestrator(relations, gen, backend),
		Conversations: agent.NewConversations(constants.ConversationIdle),
	}
}

// warm loads persisted state. Failures leave the component cold.
func (a *App) warm(ctx context.Context) {
	if err := a.Relations.Load(ctx); err != nil {
		a.logger.Warn("Relation store starts cold", zap.Error(err))
	}
	if err := a.Connections.Load(); err != nil {
		a.logger.Warn("Connection snapshot not loaded", zap.Error(err))
	}
	if _, err := a.Patterns.Load(a.Cache); err != nil {
		a.logger.Warn("Pattern snapshot not loaded", zap.Error(err))
	}
	if err := a.Scheduler.Load(); err != nil {
		a.logger.Warn("Scheduler state not loaded", zap.Error(err))
	}
}

// Flush writes every in-memory snapshot to the cache.
func (a *App) Flush(ctx context.Context) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	keep(a.Relations.Flush(ctx))
	keep(a.Connections.Flush())
	keep(a.Patterns.Flush(a.Cache, a.Config.CacheTTL))
	return firstErr
}

// Close flushes and releases the cache and backend.
func (a *App) Close(ctx context.Context) error {
	if err := a.Flush(ctx); err != nil {
		a.logger.Warn("Flush on close failed", zap.Error(err))
	}
	cacheErr := a.Cache.Close()
	if err := a.Backend.Close(ctx); err != nil {
		return fmt.Errorf("failed to close backend: %w", err)
	}
	return cacheErr
}
