// Package cache is the TTL key/value collaborator that mirrors the
// in-process lexical maps, connection snapshot, scheduler cursor and
// activity log. Values are JSON encoded.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"wordweave/backend/pkg/logger"
)

// Cache is a TTL key/value store.
type Cache interface {
	// Get decodes the value at key into dst. It reports false on a miss.
	Get(key string, dst any) (bool, error)
	// Set stores value under key. A non-positive ttl uses the cache default.
	Set(key string, value any, ttl time.Duration) error
	Delete(key string) error
	Close() error
}

// inMemoryTableSize keeps in-memory instances (tests, BACKEND=memory) small.
const inMemoryTableSize = 16 << 20

// BadgerCache implements Cache on top of Badger.
type BadgerCache struct {
	db         *badger.DB
	defaultTTL time.Duration
	logger     *zap.Logger
}

// Open opens a Badger cache in dir, or in memory when dir is empty.
// defaultTTL <= 0 means entries never expire unless Set asks for it.
func Open(dir string, defaultTTL time.Duration) (*BadgerCache, error) {
	log := logger.Get().Named("cache")

	opts := badger.DefaultOptions(dir).WithLogger(newBadgerLogger(log))
	if dir == "" {
		opts = opts.WithInMemory(true).WithMemTableSize(inMemoryTableSize)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger cache: %w", err)
	}

	log.Info("Cache opened",
		zap.String("dir", dir),
		zap.Bool("in_memory", dir == ""),
		zap.Duration("default_ttl", defaultTTL),
	)

	return &BadgerCache{db: db, defaultTTL: defaultTTL, logger: log}, nil
}

// Get implements Cache
func (c *BadgerCache) Get(key string, dst any) (bool, error) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// Set implements Cache
func (c *BadgerCache) Set(key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), raw)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete implements Cache
func (c *BadgerCache) Delete(key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Close implements Cache
func (c *BadgerCache) Close() error {
	return c.db.Close()
}

// AppendCapped appends entry to the JSON list at key and keeps only the
// newest limit entries.
func AppendCapped[T any](c Cache, key string, entry T, limit int, ttl time.Duration) error {
	var list []T
	if _, err := c.Get(key, &list); err != nil {
		return err
	}
	list = append(list, entry)
	if limit > 0 && len(list) > limit {
		list = list[len(list)-limit:]
	}
	return c.Set(key, list, ttl)
}

// badgerLogger routes badger's printf logging into zap.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func newBadgerLogger(l *zap.Logger) badgerLogger {
	return badgerLogger{s: l.Sugar()}
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.s.Errorf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.s.Warnf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.s.Debugf(f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.s.Debugf(f, v...) }
