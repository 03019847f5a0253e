package store

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"wordweave/backend/internal/lexicon"
	apperrors "wordweave/backend/pkg/errors"
	"wordweave/backend/pkg/logger"
)

// BreakerSettings configures the circuit around a Backend
type BreakerSettings struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	TripRatio   float64
}

// BreakerBackend wraps a Backend with a circuit breaker so a failing
// database fails fast instead of stalling every lookup.
type BreakerBackend struct {
	inner Backend
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerBackend wraps inner. Not-found results do not count as failures.
func NewBreakerBackend(inner Backend, name string, cfg BreakerSettings) *BreakerBackend {
	log := logger.Get()
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.TripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Backend circuit breaker changed state",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || apperrors.IsNotFound(err)
		},
	}
	return &BreakerBackend{inner: inner, cb: gobreaker.NewCircuitBreaker(st)}
}

// State exposes the breaker state for status reporting.
func (b *BreakerBackend) State() string {
	return b.cb.State().String()
}

func run[T any](b *BreakerBackend, fn func() (T, error)) (T, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func exec(b *BreakerBackend, fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

func (b *BreakerBackend) SaveRelations(ctx context.Context, rels ...lexicon.Relation) error {
	return exec(b, func() error { return b.inner.SaveRelations(ctx, rels...) })
}

func (b *BreakerBackend) LoadRelations(ctx context.Context, word string, kind lexicon.RelationKind) ([]lexicon.Relation, error) {
	return run(b, func() ([]lexicon.Relation, error) { return b.inner.LoadRelations(ctx, word, kind) })
}

func (b *BreakerBackend) LoadAllRelations(ctx context.Context) ([]lexicon.Relation, error) {
	return run(b, func() ([]lexicon.Relation, error) { return b.inner.LoadAllRelations(ctx) })
}

func (b *BreakerBackend) SaveDefinition(ctx context.Context, def lexicon.Definition) error {
	return exec(b, func() error { return b.inner.SaveDefinition(ctx, def) })
}

func (b *BreakerBackend) LoadDefinition(ctx context.Context, word string) (*lexicon.Definition, error) {
	return run(b, func() (*lexicon.Definition, error) { return b.inner.LoadDefinition(ctx, word) })
}

func (b *BreakerBackend) LoadAllDefinitions(ctx context.Context) ([]lexicon.Definition, error) {
	return run(b, func() ([]lexicon.Definition, error) { return b.inner.LoadAllDefinitions(ctx) })
}

func (b *BreakerBackend) SaveContent(ctx context.Context, rec lexicon.ContentRecord) (int64, error) {
	return run(b, func() (int64, error) { return b.inner.SaveContent(ctx, rec) })
}

func (b *BreakerBackend) FetchContentSince(ctx context.Context, afterID int64, limit int) ([]lexicon.ContentRecord, error) {
	return run(b, func() ([]lexicon.ContentRecord, error) { return b.inner.FetchContentSince(ctx, afterID, limit) })
}

func (b *BreakerBackend) WordsInCategory(ctx context.Context, category, exclude string, limit int) ([]string, error) {
	return run(b, func() ([]string, error) { return b.inner.WordsInCategory(ctx, category, exclude, limit) })
}

func (b *BreakerBackend) SaveQAPair(ctx context.Context, pair lexicon.QAPair) error {
	return exec(b, func() error { return b.inner.SaveQAPair(ctx, pair) })
}

func (b *BreakerBackend) LoadQAPairs(ctx context.Context, limit int) ([]lexicon.QAPair, error) {
	return run(b, func() ([]lexicon.QAPair, error) { return b.inner.LoadQAPairs(ctx, limit) })
}

// Close bypasses the breaker so shutdown always reaches the driver.
func (b *BreakerBackend) Close(ctx context.Context) error {
	return b.inner.Close(ctx)
}
