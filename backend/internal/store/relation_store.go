package store

import (
	"context"
	stderrors "errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"wordweave/backend/internal/cache"
	"wordweave/backend/internal/lexicon"
	apperrors "wordweave/backend/pkg/errors"
	"wordweave/backend/pkg/logger"
)

// edge is the cached form of one outgoing relation.
type edge struct {
	Strength float64 `json:"strength"`
	Context  string  `json:"context,omitempty"`
	Verified bool    `json:"verified,omitempty"`
}

// RelationStore owns the typed relation and definition maps. The backend is
// authoritative; the in-process maps and the cache mirror it write-through.
//
// Public methods never return errors: failures are logged and reads degrade
// to empty results, writes to false.
type RelationStore struct {
	backend  Backend
	cache    cache.Cache
	ttl      time.Duration
	language string
	logger   *zap.Logger
	group    singleflight.Group

	// writeMu serializes backend writes so max-merging sees a stable value
	writeMu sync.Mutex

	mu          sync.RWMutex
	edges       map[lexicon.RelationKind]map[string]map[string]edge
	definitions map[string]lexicon.Definition
	resolved    map[string]bool
	warm        bool
}

// Options configures a RelationStore
type Options struct {
	CacheTTL time.Duration
	Language string
}

// NewRelationStore creates a store over backend and c.
func NewRelationStore(backend Backend, c cache.Cache, opts Options) *RelationStore {
	if opts.Language == "" {
		opts.Language = "en"
	}
	s := &RelationStore{
		backend:     backend,
		cache:       c,
		ttl:         opts.CacheTTL,
		language:    opts.Language,
		logger:      logger.Get().Named("relations"),
		edges:       make(map[lexicon.RelationKind]map[string]map[string]edge),
		definitions: make(map[string]lexicon.Definition),
		resolved:    make(map[string]bool),
	}
	for _, k := range lexicon.EdgeKinds {
		s.edges[k] = make(map[string]map[string]edge)
	}
	return s
}

// IsValidWord reports whether w can be stored as a word
func (s *RelationStore) IsValidWord(w string) bool {
	return lexicon.IsValidWord(w)
}

// ============================================================================
// Lifecycle
// ============================================================================

// Load rebuilds the in-process maps from the backend. After a successful
// Load, reads no longer fall through to the backend.
func (s *RelationStore) Load(ctx context.Context) error {
	rels, err := s.backend.LoadAllRelations(ctx)
	if err != nil {
		return apperrors.NewPersistenceFailed("load relations", err)
	}
	defs, err := s.backend.LoadAllDefinitions(ctx)
	if err != nil {
		return apperrors.NewPersistenceFailed("load definitions", err)
	}

	s.mu.Lock()
	for _, rel := range rels {
		if rel.Kind == lexicon.KindDefinition || !rel.Kind.Valid() {
			continue
		}
		s.putEdgeLocked(rel.Kind, rel.Word, rel.RelatedWord, edge{
			Strength: lexicon.Clamp(rel.Strength),
			Context:  rel.Context,
			Verified: rel.Verified,
		})
	}
	for _, def := range defs {
		s.definitions[def.Word] = def
	}
	s.warm = true
	s.mu.Unlock()

	s.logger.Info("Relation store loaded",
		zap.Int("relations", len(rels)),
		zap.Int("definitions", len(defs)),
	)
	return nil
}

// Flush writes every in-process entry into the cache.
func (s *RelationStore) Flush(ctx context.Context) error {
	s.mu.RLock()
	type pending struct {
		key   string
		value any
	}
	var batch []pending
	for kind, byWord := range s.edges {
		for word, targets := range byWord {
			batch = append(batch, pending{cacheKey(kind, word), copyEdges(targets)})
		}
	}
	for word, def := range s.definitions {
		batch = append(batch, pending{cache.PrefixDefinitions + word, def})
	}
	s.mu.RUnlock()

	var errs []error
	for _, p := range batch {
		if err := s.cache.Set(p.key, p.value, s.ttl); err != nil {
			errs = append(errs, apperrors.NewCacheFailed(p.key, err))
		}
	}
	if len(errs) > 0 {
		s.logger.Warn("Cache flush incomplete", zap.Int("failed", len(errs)), zap.Int("total", len(batch)))
	}
	return stderrors.Join(errs...)
}

// ============================================================================
// Writes
// ============================================================================

// LearnSynonym stores a symmetric synonym edge between w1 and w2.
func (s *RelationStore) LearnSynonym(ctx context.Context, w1, w2 string, strength float64) bool {
	return s.learnEdge(ctx, lexicon.KindSynonym, w1, w2, strength, "", false)
}

// LearnAntonym stores a symmetric antonym edge between w1 and w2.
func (s *RelationStore) LearnAntonym(ctx context.Context, w1, w2 string, strength float64) bool {
	return s.learnEdge(ctx, lexicon.KindAntonym, w1, w2, strength, "", false)
}

// LearnAssociation stores a directed association from w1 to w2.
func (s *RelationStore) LearnAssociation(ctx context.Context, w1, w2, label string, strength float64) bool {
	return s.learnEdge(ctx, lexicon.KindAssociation, w1, w2, strength, label, false)
}

func (s *RelationStore) learnEdge(ctx context.Context, kind lexicon.RelationKind, w1, w2 string, strength float64, label string, verified bool) bool {
	w1, w2 = lexicon.Normalize(w1), lexicon.Normalize(w2)
	if err := validatePair(w1, w2); err != nil {
		s.logger.Debug("Relation rejected", zap.String("type", string(kind)), zap.Error(err))
		return false
	}
	strength = lexicon.Clamp(strength)

	type directed struct{ from, to string }
	dirs := []directed{{w1, w2}}
	if kind.Symmetric() {
		dirs = append(dirs, directed{w2, w1})
	}

	// Merging against an unresolved map would overwrite a stronger stored edge.
	for _, d := range dirs {
		if err := s.ensureResolved(ctx, kind, d.from); err != nil {
			s.logger.Warn("Relation not learned",
				zap.String("type", string(kind)),
				zap.String("word", d.from),
				zap.Error(err),
			)
			return false
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	merged := make([]edge, len(dirs))
	rels := make([]lexicon.Relation, len(dirs))
	now := time.Now().UTC()
	for i, d := range dirs {
		s.mu.RLock()
		current, exists := s.edges[kind][d.from][d.to]
		s.mu.RUnlock()

		e := edge{Strength: strength, Context: label, Verified: verified}
		if exists {
			e.Strength = max(current.Strength, strength)
			e.Verified = current.Verified || verified
			if label == "" {
				e.Context = current.Context
			}
		}
		merged[i] = e
		rels[i] = lexicon.Relation{
			Word:        d.from,
			RelatedWord: d.to,
			Kind:        kind,
			Strength:    e.Strength,
			Context:     e.Context,
			Language:    s.language,
			Verified:    e.Verified,
			UpdatedAt:   now,
		}
	}

	if err := s.backend.SaveRelations(ctx, rels...); err != nil {
		s.logger.Warn("Failed to persist relation",
			zap.String("type", string(kind)),
			zap.String("word", w1),
			zap.String("related_word", w2),
			zap.Error(apperrors.NewPersistenceFailed("save relation", err)),
		)
		return false
	}

	s.mu.Lock()
	for i, d := range dirs {
		s.putEdgeLocked(kind, d.from, d.to, merged[i])
	}
	s.mu.Unlock()

	for _, d := range dirs {
		s.mirror(kind, d.from)
	}
	return true
}

// LearnDefinition stores or overwrites the definition of word. Text longer
// than the cap is truncated with an ellipsis.
func (s *RelationStore) LearnDefinition(ctx context.Context, word, text string, verified bool) bool {
	word = lexicon.Normalize(word)
	if !lexicon.IsValidWord(word) {
		s.logger.Debug("Definition rejected", zap.Error(apperrors.NewInvalidWord(word)))
		return false
	}
	text = lexicon.TruncateDefinition(strings.Join(strings.Fields(text), " "))
	if text == "" {
		s.logger.Debug("Definition rejected", zap.Error(apperrors.NewInvalidDefinition(word, "empty text")))
		return false
	}

	def := lexicon.Definition{
		Word:      word,
		Text:      text,
		Language:  s.language,
		Verified:  verified,
		UpdatedAt: time.Now().UTC(),
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.SaveDefinition(ctx, def); err != nil {
		s.logger.Warn("Failed to persist definition",
			zap.String("word", word),
			zap.Error(apperrors.NewPersistenceFailed("save definition", err)),
		)
		return false
	}

	s.mu.Lock()
	s.definitions[word] = def
	s.resolved[cache.PrefixDefinitions+word] = true
	s.mu.Unlock()

	if err := s.cache.Set(cache.PrefixDefinitions+word, def, s.ttl); err != nil {
		s.logger.Debug("Failed to mirror definition", zap.Error(apperrors.NewCacheFailed(word, err)))
	}
	return true
}

// ============================================================================
// Reads
// ============================================================================

// GetSynonyms returns the synonyms of word, strongest first.
func (s *RelationStore) GetSynonyms(ctx context.Context, word string) []lexicon.WordStrength {
	return s.neighbours(ctx, lexicon.KindSynonym, word)
}

// GetAntonyms returns the antonyms of word, strongest first.
func (s *RelationStore) GetAntonyms(ctx context.Context, word string) []lexicon.WordStrength {
	return s.neighbours(ctx, lexicon.KindAntonym, word)
}

// GetAssociations returns the words word is associated with, strongest first.
func (s *RelationStore) GetAssociations(ctx context.Context, word string) []lexicon.WordStrength {
	return s.neighbours(ctx, lexicon.KindAssociation, word)
}

// GetRelatedWords merges all edge kinds of word with strength >= threshold.
func (s *RelationStore) GetRelatedWords(ctx context.Context, word string, threshold float64) []lexicon.RelatedWord {
	word = lexicon.Normalize(word)
	if !lexicon.IsValidWord(word) {
		return nil
	}

	var out []lexicon.RelatedWord
	for _, kind := range lexicon.EdgeKinds {
		s.ensureResolved(ctx, kind, word)

		s.mu.RLock()
		for related, e := range s.edges[kind][word] {
			if e.Strength < threshold {
				continue
			}
			out = append(out, lexicon.RelatedWord{
				Word:     related,
				Kind:     kind,
				Strength: e.Strength,
				Context:  e.Context,
			})
		}
		s.mu.RUnlock()
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Strength != out[j].Strength {
			return out[i].Strength > out[j].Strength
		}
		if out[i].Word != out[j].Word {
			return out[i].Word < out[j].Word
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// GetDefinition returns the definition of word if one is known.
func (s *RelationStore) GetDefinition(ctx context.Context, word string) (lexicon.Definition, bool) {
	word = lexicon.Normalize(word)
	if !lexicon.IsValidWord(word) {
		return lexicon.Definition{}, false
	}

	s.mu.RLock()
	def, ok := s.definitions[word]
	done := s.warm || s.resolved[cache.PrefixDefinitions+word]
	s.mu.RUnlock()
	if ok || done {
		return def, ok
	}

	key := cache.PrefixDefinitions + word
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		var cached lexicon.Definition
		if hit, err := s.cache.Get(key, &cached); err != nil {
			s.logger.Debug("Cache read failed", zap.Error(apperrors.NewCacheFailed(key, err)))
		} else if hit {
			return &cached, nil
		}

		loaded, err := s.backend.LoadDefinition(ctx, word)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return (*lexicon.Definition)(nil), nil
			}
			return nil, err
		}
		if err := s.cache.Set(key, loaded, s.ttl); err != nil {
			s.logger.Debug("Failed to mirror definition", zap.Error(apperrors.NewCacheFailed(key, err)))
		}
		return loaded, nil
	})
	if err != nil {
		s.logger.Warn("Failed to load definition",
			zap.String("word", word),
			zap.Error(apperrors.NewPersistenceFailed("load definition", err)),
		)
		return lexicon.Definition{}, false
	}

	loaded, _ := v.(*lexicon.Definition)
	s.mu.Lock()
	s.resolved[key] = true
	if loaded != nil {
		if _, exists := s.definitions[word]; !exists {
			s.definitions[word] = *loaded
		}
	}
	def, ok = s.definitions[word]
	s.mu.Unlock()
	return def, ok
}

// KnownWords lists every word that has at least one relation or a
// definition, sorted.
func (s *RelationStore) KnownWords() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	for _, byWord := range s.edges {
		for word, targets := range byWord {
			if len(targets) == 0 {
				continue
			}
			seen[word] = true
			for related := range targets {
				seen[related] = true
			}
		}
	}
	for word := range s.definitions {
		seen[word] = true
	}

	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Stats counts symmetric pairs once and associations per direction.
func (s *RelationStore) Stats() lexicon.RelationStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := func(kind lexicon.RelationKind) int {
		n := 0
		for _, targets := range s.edges[kind] {
			n += len(targets)
		}
		return n
	}
	return lexicon.RelationStats{
		SynonymPairs:     count(lexicon.KindSynonym) / 2,
		AntonymPairs:     count(lexicon.KindAntonym) / 2,
		AssociationPairs: count(lexicon.KindAssociation),
		Definitions:      len(s.definitions),
	}
}

// ============================================================================
// Internals
// ============================================================================

func (s *RelationStore) neighbours(ctx context.Context, kind lexicon.RelationKind, word string) []lexicon.WordStrength {
	word = lexicon.Normalize(word)
	if !lexicon.IsValidWord(word) {
		return nil
	}
	s.ensureResolved(ctx, kind, word)

	s.mu.RLock()
	out := make([]lexicon.WordStrength, 0, len(s.edges[kind][word]))
	for related, e := range s.edges[kind][word] {
		out = append(out, lexicon.WordStrength{Word: related, Strength: e.Strength})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Strength != out[j].Strength {
			return out[i].Strength > out[j].Strength
		}
		return out[i].Word < out[j].Word
	})
	return out
}

// ensureResolved pulls word's edges of kind from the cache, or failing that
// the backend, the first time they are needed. A failed load leaves the key
// unresolved so the next call retries.
func (s *RelationStore) ensureResolved(ctx context.Context, kind lexicon.RelationKind, word string) error {
	key := cacheKey(kind, word)

	s.mu.RLock()
	done := s.warm || s.resolved[key]
	s.mu.RUnlock()
	if done {
		return nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		var cached map[string]edge
		if hit, err := s.cache.Get(key, &cached); err != nil {
			s.logger.Debug("Cache read failed", zap.Error(apperrors.NewCacheFailed(key, err)))
		} else if hit {
			return cached, nil
		}

		rels, err := s.backend.LoadRelations(ctx, word, kind)
		if err != nil {
			return nil, err
		}
		loaded := make(map[string]edge, len(rels))
		for _, rel := range rels {
			loaded[rel.RelatedWord] = edge{
				Strength: lexicon.Clamp(rel.Strength),
				Context:  rel.Context,
				Verified: rel.Verified,
			}
		}
		return loaded, nil
	})
	if err != nil {
		err = apperrors.NewPersistenceFailed("load relations", err)
		s.logger.Warn("Failed to load relations",
			zap.String("type", string(kind)),
			zap.String("word", word),
			zap.Error(err),
		)
		return err
	}

	loaded, _ := v.(map[string]edge)
	s.mu.Lock()
	if !s.resolved[key] {
		for related, e := range loaded {
			s.putEdgeLocked(kind, word, related, e)
		}
		s.resolved[key] = true
	}
	s.mu.Unlock()

	s.mirror(kind, word)
	return nil
}

// putEdgeLocked merges e into the map. Caller holds s.mu.
func (s *RelationStore) putEdgeLocked(kind lexicon.RelationKind, from, to string, e edge) {
	targets := s.edges[kind][from]
	if targets == nil {
		targets = make(map[string]edge)
		s.edges[kind][from] = targets
	}
	if current, ok := targets[to]; ok {
		e.Strength = max(e.Strength, current.Strength)
		if e.Context == "" {
			e.Context = current.Context
		}
		e.Verified = e.Verified || current.Verified
	}
	targets[to] = e
}

// mirror writes word's current edge map of kind into the cache.
func (s *RelationStore) mirror(kind lexicon.RelationKind, word string) {
	s.mu.RLock()
	snapshot := copyEdges(s.edges[kind][word])
	s.mu.RUnlock()

	key := cacheKey(kind, word)
	if err := s.cache.Set(key, snapshot, s.ttl); err != nil {
		s.logger.Debug("Failed to mirror relations", zap.Error(apperrors.NewCacheFailed(key, err)))
	}
}

func copyEdges(in map[string]edge) map[string]edge {
	out := make(map[string]edge, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cacheKey(kind lexicon.RelationKind, word string) string {
	switch kind {
	case lexicon.KindSynonym:
		return cache.PrefixSynonyms + word
	case lexicon.KindAntonym:
		return cache.PrefixAntonyms + word
	case lexicon.KindAssociation:
		return cache.PrefixAssociations + word
	}
	return cache.PrefixDefinitions + word
}

func validatePair(w1, w2 string) error {
	if !lexicon.IsValidWord(w1) {
		return apperrors.NewInvalidWord(w1)
	}
	if !lexicon.IsValidWord(w2) {
		return apperrors.NewInvalidWord(w2)
	}
	if w1 == w2 {
		return apperrors.NewSelfRelation(w1)
	}
	return nil
}
