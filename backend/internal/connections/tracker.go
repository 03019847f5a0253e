// Package connections tracks untyped, symmetric co-occurrence strengths
// between words. They are kept apart from the typed relations and only
// ever grow.
package connections

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"wordweave/backend/internal/cache"
	"wordweave/backend/internal/constants"
	"wordweave/backend/internal/lexicon"
	"wordweave/backend/pkg/logger"
)

// Rand is the randomness the tracker needs for exploration.
type Rand interface {
	Perm(n int) []int
}

// Neighbor is a connected word and the pair strength
type Neighbor struct {
	Word     string  `json:"word"`
	Strength float64 `json:"strength"`
}

// Tracker holds pair strengths keyed by lexicon.PairKey.
type Tracker struct {
	mu        sync.RWMutex
	strengths map[string]float64
	cache     cache.Cache
	ttl       time.Duration
	rng       Rand
	logger    *zap.Logger
}

// NewTracker creates a tracker persisting snapshots to c.
func NewTracker(c cache.Cache, ttl time.Duration, rng Rand) *Tracker {
	return &Tracker{
		strengths: make(map[string]float64),
		cache:     c,
		ttl:       ttl,
		rng:       rng,
		logger:    logger.Get().Named("connections"),
	}
}

// Strengthen adds rate to the pair strength, clamped to [0,1], and returns
// the new value. Self pairs and invalid words are ignored.
func (t *Tracker) Strengthen(w1, w2 string, rate float64) float64 {
	w1, w2 = lexicon.Normalize(w1), lexicon.Normalize(w2)
	if w1 == w2 || !lexicon.IsValidWord(w1) || !lexicon.IsValidWord(w2) {
		return 0
	}
	if rate < 0 {
		rate = 0
	}

	key := lexicon.PairKey(w1, w2)
	t.mu.Lock()
	next := lexicon.Clamp(t.strengths[key] + rate)
	t.strengths[key] = next
	t.mu.Unlock()
	return next
}

// Strength returns the current pair strength, 0 when unseen.
func (t *Tracker) Strength(w1, w2 string) float64 {
	key := lexicon.PairKey(lexicon.Normalize(w1), lexicon.Normalize(w2))
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.strengths[key]
}

// Count is the number of tracked pairs.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.strengths)
}

// Neighbors lists words connected to word, strongest first.
func (t *Tracker) Neighbors(word string) []Neighbor {
	word = lexicon.Normalize(word)
	t.mu.RLock()
	var out []Neighbor
	for key, s := range t.strengths {
		a, b := lexicon.SplitPairKey(key)
		switch word {
		case a:
			out = append(out, Neighbor{Word: b, Strength: s})
		case b:
			out = append(out, Neighbor{Word: a, Strength: s})
		}
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Strength != out[j].Strength {
			return out[i].Strength > out[j].Strength
		}
		return out[i].Word < out[j].Word
	})
	return out
}

// StrengthenPeers strengthens word against up to MaxPeersPerWord valid
// peers at the full rate and returns how many pairs were touched.
func (t *Tracker) StrengthenPeers(word string, peers []string, rate float64) int {
	word = lexicon.Normalize(word)
	n := 0
	for _, peer := range peers {
		if n == constants.MaxPeersPerWord {
			break
		}
		peer = lexicon.Normalize(peer)
		if peer == word || !lexicon.IsValidWord(peer) || !lexicon.IsValidWord(word) {
			continue
		}
		t.Strengthen(word, peer, rate)
		n++
	}
	return n
}

// Explore samples up to ExplorationSampleSize known words and strengthens
// each consecutive sampled pair at half rate.
func (t *Tracker) Explore(known []string, rate float64) int {
	if len(known) < 2 {
		return 0
	}
	sample := make([]string, 0, constants.ExplorationSampleSize)
	for _, i := range t.rng.Perm(len(known)) {
		sample = append(sample, known[i])
		if len(sample) == constants.ExplorationSampleSize {
			break
		}
	}

	n := 0
	for i := 0; i+1 < len(sample); i++ {
		if t.Strengthen(sample[i], sample[i+1], rate/2) > 0 {
			n++
		}
	}
	t.logger.Debug("Explored connections", zap.Int("sampled", len(sample)), zap.Int("strengthened", n))
	return n
}

// Flush writes the snapshot to the cache.
func (t *Tracker) Flush() error {
	t.mu.RLock()
	snapshot := make(map[string]float64, len(t.strengths))
	for k, v := range t.strengths {
		snapshot[k] = v
	}
	t.mu.RUnlock()

	if err := t.cache.Set(cache.KeyConnections, snapshot, t.ttl); err != nil {
		t.logger.Warn("Failed to persist connections", zap.Error(err))
		return err
	}
	return nil
}

// Load merges the cached snapshot into memory, keeping the larger value
// for pairs present on both sides.
func (t *Tracker) Load() error {
	var snapshot map[string]float64
	ok, err := t.cache.Get(cache.KeyConnections, &snapshot)
	if err != nil {
		t.logger.Warn("Failed to load connections", zap.Error(err))
		return err
	}
	if !ok {
		return nil
	}

	t.mu.Lock()
	for k, v := range snapshot {
		t.strengths[k] = max(t.strengths[k], lexicon.Clamp(v))
	}
	t.mu.Unlock()
	t.logger.Info("Connections loaded", zap.Int("pairs", len(snapshot)))
	return nil
}
