package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordweave/backend/internal/cache"
	"wordweave/backend/internal/lexicon"
)

func newTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.Open("", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func newTestStore(t *testing.T) (*RelationStore, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	return NewRelationStore(backend, newTestCache(t), Options{}), backend
}

// failingBackend fails every call
type failingBackend struct {
	*MemoryBackend
	err error
}

func (f *failingBackend) SaveRelations(ctx context.Context, rels ...lexicon.Relation) error {
	return f.err
}
func (f *failingBackend) SaveDefinition(ctx context.Context, def lexicon.Definition) error {
	return f.err
}
func (f *failingBackend) LoadRelations(ctx context.Context, word string, kind lexicon.RelationKind) ([]lexicon.Relation, error) {
	return nil, f.err
}
func (f *failingBackend) LoadDefinition(ctx context.Context, word string) (*lexicon.Definition, error) {
	return nil, f.err
}
func (f *failingBackend) LoadAllRelations(ctx context.Context) ([]lexicon.Relation, error) {
	return nil, f.err
}

// rejectingBackend fails any relation batch with a row leaving reject.
type rejectingBackend struct {
	*MemoryBackend
	reject string
}

func (r *rejectingBackend) SaveRelations(ctx context.Context, rels ...lexicon.Relation) error {
	for _, rel := range rels {
		if rel.Word == r.reject {
			return errors.New("constraint violation")
		}
	}
	return r.MemoryBackend.SaveRelations(ctx, rels...)
}

// unreadableBackend accepts writes but cannot read relations back.
type unreadableBackend struct {
	*MemoryBackend
}

func (u *unreadableBackend) LoadRelations(ctx context.Context, word string, kind lexicon.RelationKind) ([]lexicon.Relation, error) {
	return nil, errors.New("read timeout")
}

func strengthOf(list []lexicon.WordStrength, word string) (float64, bool) {
	for _, ws := range list {
		if ws.Word == word {
			return ws.Strength, true
		}
	}
	return 0, false
}

func TestLearnSynonym_Symmetric(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.True(t, s.LearnSynonym(ctx, "Happy", "glad", 0.8))

	got, ok := strengthOf(s.GetSynonyms(ctx, "happy"), "glad")
	require.True(t, ok)
	assert.Equal(t, 0.8, got)

	got, ok = strengthOf(s.GetSynonyms(ctx, "glad"), "happy")
	require.True(t, ok)
	assert.Equal(t, 0.8, got)
}

func TestLearnAntonym_ClampsStrength(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.True(t, s.LearnAntonym(ctx, "hot", "cold", 1.7))
	got, _ := strengthOf(s.GetAntonyms(ctx, "cold"), "hot")
	assert.Equal(t, 1.0, got)

	require.True(t, s.LearnAntonym(ctx, "up", "down", -3))
	got, ok := strengthOf(s.GetAntonyms(ctx, "up"), "down")
	require.True(t, ok)
	assert.Equal(t, 0.0, got)
}

func TestLearn_Rejections(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)

	assert.False(t, s.LearnAssociation(ctx, "cat", "cat", "sentence", 0.5))
	assert.False(t, s.LearnSynonym(ctx, "cat", "1234", 0.5))
	assert.False(t, s.LearnAntonym(ctx, "x", "dog", 0.5))
	assert.False(t, s.LearnSynonym(ctx, "cat!", "dog", 0.5))
	assert.False(t, s.LearnDefinition(ctx, "cat", "   ", true))
	assert.False(t, s.LearnDefinition(ctx, "", "a small animal", true))

	rels, err := backend.LoadAllRelations(ctx)
	require.NoError(t, err)
	assert.Empty(t, rels)
	assert.Empty(t, s.KnownWords())
}

func TestLearn_MergesByMax(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)

	require.True(t, s.LearnAssociation(ctx, "cat", "milk", "food", 0.6))
	require.True(t, s.LearnAssociation(ctx, "cat", "milk", "", 0.2))

	related := s.GetRelatedWords(ctx, "cat", 0)
	require.Len(t, related, 1)
	assert.Equal(t, 0.6, related[0].Strength)
	assert.Equal(t, "food", related[0].Context)
	assert.Equal(t, lexicon.KindAssociation, related[0].Kind)

	rows, err := backend.LoadRelations(ctx, "cat", lexicon.KindAssociation)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.6, rows[0].Strength)

	// associations are directed
	assert.Empty(t, s.GetAssociations(ctx, "milk"))
}

func TestGetRelatedWords_Threshold(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	s.LearnSynonym(ctx, "big", "large", 0.9)
	s.LearnAntonym(ctx, "big", "small", 0.5)
	s.LearnAssociation(ctx, "big", "elephant", "sentence", 0.3)

	related := s.GetRelatedWords(ctx, "big", 0.5)
	require.Len(t, related, 2)
	for _, r := range related {
		assert.GreaterOrEqual(t, r.Strength, 0.5)
	}
	assert.Equal(t, "large", related[0].Word)
	assert.Equal(t, lexicon.KindSynonym, related[0].Kind)

	assert.Len(t, s.GetRelatedWords(ctx, "big", 0), 3)
}

func TestLearnDefinition(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.True(t, s.LearnDefinition(ctx, "cat", "a small animal", true))
	def, ok := s.GetDefinition(ctx, "CAT")
	require.True(t, ok)
	assert.Equal(t, "a small animal", def.Text)
	assert.True(t, def.Verified)

	require.True(t, s.LearnDefinition(ctx, "cat", "a   furry\tpet", false))
	def, _ = s.GetDefinition(ctx, "cat")
	assert.Equal(t, "a furry pet", def.Text)

	require.True(t, s.LearnDefinition(ctx, "essay", strings.Repeat("word ", 400), false))
	def, _ = s.GetDefinition(ctx, "essay")
	assert.Len(t, []rune(def.Text), 1000)
	assert.True(t, strings.HasSuffix(def.Text, "..."))

	_, ok = s.GetDefinition(ctx, "dog")
	assert.False(t, ok)
}

func TestColdStart_FallsBackToBackend(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()

	first := NewRelationStore(backend, newTestCache(t), Options{})
	require.True(t, first.LearnSynonym(ctx, "quick", "fast", 0.7))
	require.True(t, first.LearnDefinition(ctx, "quick", "moving with speed", false))

	// new process: empty memory, empty cache, same authoritative backend
	second := NewRelationStore(backend, newTestCache(t), Options{})
	got, ok := strengthOf(second.GetSynonyms(ctx, "fast"), "quick")
	require.True(t, ok)
	assert.Equal(t, 0.7, got)

	def, ok := second.GetDefinition(ctx, "quick")
	require.True(t, ok)
	assert.Equal(t, "moving with speed", def.Text)
}

func TestLoad_RebuildsFromBackend(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.SaveRelations(ctx, lexicon.Relation{Word: "sun", RelatedWord: "star", Kind: lexicon.KindAssociation, Strength: 0.4}))
	require.NoError(t, backend.SaveDefinition(ctx, lexicon.Definition{Word: "sun", Text: "the star at the centre"}))

	s := NewRelationStore(backend, newTestCache(t), Options{})
	require.NoError(t, s.Load(ctx))

	assert.Equal(t, []string{"star", "sun"}, s.KnownWords())
	stats := s.Stats()
	assert.Equal(t, 1, stats.AssociationPairs)
	assert.Equal(t, 1, stats.Definitions)
}

func TestReads_CacheFirst(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	writer := NewRelationStore(NewMemoryBackend(), c, Options{})
	require.True(t, writer.LearnAntonym(ctx, "light", "dark", 0.9))

	// a store with an empty backend still sees the cached mirror
	reader := NewRelationStore(NewMemoryBackend(), c, Options{})
	got, ok := strengthOf(reader.GetAntonyms(ctx, "light"), "dark")
	require.True(t, ok)
	assert.Equal(t, 0.9, got)
}

func TestFlush_RepopulatesCache(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.True(t, s.LearnSynonym(ctx, "car", "auto", 0.6))

	fresh := newTestCache(t)
	s.cache = fresh
	require.NoError(t, s.Flush(ctx))

	var mirrored map[string]edge
	ok, err := fresh.Get(cache.PrefixSynonyms+"auto", &mirrored)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.6, mirrored["car"].Strength)
}

func TestPersistenceFailure_Degrades(t *testing.T) {
	ctx := context.Background()
	backend := &failingBackend{MemoryBackend: NewMemoryBackend(), err: errors.New("connection refused")}
	s := NewRelationStore(backend, newTestCache(t), Options{})

	assert.False(t, s.LearnSynonym(ctx, "happy", "glad", 0.5))
	assert.False(t, s.LearnDefinition(ctx, "happy", "feeling good", false))
	assert.Empty(t, s.GetSynonyms(ctx, "happy"))
	assert.Empty(t, s.GetRelatedWords(ctx, "happy", 0))
	_, ok := s.GetDefinition(ctx, "happy")
	assert.False(t, ok)
	assert.Error(t, s.Load(ctx))
	assert.Empty(t, s.KnownWords())
}

func TestLearnSynonym_FailedReverseWriteStoresNeitherSide(t *testing.T) {
	ctx := context.Background()
	backend := &rejectingBackend{MemoryBackend: NewMemoryBackend(), reject: "warm"}
	s := NewRelationStore(backend, newTestCache(t), Options{})

	assert.False(t, s.LearnSynonym(ctx, "hot", "warm", 0.8))
	assert.Empty(t, s.GetSynonyms(ctx, "hot"))
	assert.Empty(t, s.GetSynonyms(ctx, "warm"))

	cold := NewRelationStore(backend.MemoryBackend, newTestCache(t), Options{})
	require.NoError(t, cold.Load(ctx))
	assert.Empty(t, cold.GetSynonyms(ctx, "hot"))
	assert.Empty(t, cold.GetSynonyms(ctx, "warm"))
}

func TestLearnSynonym_UnresolvedReadDoesNotLowerStrength(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend()
	require.NoError(t, mem.SaveRelations(ctx,
		lexicon.Relation{Word: "big", RelatedWord: "large", Kind: lexicon.KindSynonym, Strength: 0.9},
		lexicon.Relation{Word: "large", RelatedWord: "big", Kind: lexicon.KindSynonym, Strength: 0.9},
	))
	s := NewRelationStore(&unreadableBackend{MemoryBackend: mem}, newTestCache(t), Options{})

	assert.False(t, s.LearnSynonym(ctx, "big", "large", 0.2))

	rels, err := mem.LoadRelations(ctx, "big", lexicon.KindSynonym)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, 0.9, rels[0].Strength)
}

func TestImport_ReplaysThroughLearnPath(t *testing.T) {
	ctx := context.Background()
	src := NewMemoryBackend()
	require.NoError(t, src.SaveRelations(ctx, lexicon.Relation{Word: "cold", RelatedWord: "hot", Kind: lexicon.KindAntonym, Strength: 0.8}))
	require.NoError(t, src.SaveRelations(ctx, lexicon.Relation{Word: "cold", RelatedWord: "cold", Kind: lexicon.KindSynonym, Strength: 0.8}))
	require.NoError(t, src.SaveRelations(ctx, lexicon.Relation{Word: "cold", RelatedWord: "ice", Kind: lexicon.KindAssociation, Strength: 0.3, Context: "weather"}))
	require.NoError(t, src.SaveDefinition(ctx, lexicon.Definition{Word: "cold", Text: "having a low temperature", Verified: true}))

	s, _ := newTestStore(t)
	report, err := s.Import(ctx, src)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Relations)
	assert.Equal(t, 1, report.Definitions)
	assert.Equal(t, 1, report.Rejected)

	got, ok := strengthOf(s.GetAntonyms(ctx, "hot"), "cold")
	require.True(t, ok)
	assert.Equal(t, 0.8, got)
}

func TestBreakerBackend_TripsOnFailures(t *testing.T) {
	ctx := context.Background()
	failing := &failingBackend{MemoryBackend: NewMemoryBackend(), err: errors.New("timeout")}
	b := NewBreakerBackend(failing, "test", BreakerSettings{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		TripRatio:   0.5,
	})

	for i := 0; i < 3; i++ {
		assert.Error(t, b.SaveRelations(ctx, lexicon.Relation{Word: "a1", RelatedWord: "b1", Kind: lexicon.KindSynonym}))
	}
	assert.Equal(t, "open", b.State())

	// open circuit short-circuits even calls the inner backend would serve
	_, err := b.LoadQAPairs(ctx, 10)
	assert.Error(t, err)
}

func TestBreakerBackend_NotFoundIsNotAFailure(t *testing.T) {
	ctx := context.Background()
	b := NewBreakerBackend(NewMemoryBackend(), "test", BreakerSettings{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		TripRatio:   0.5,
	})

	for i := 0; i < 5; i++ {
		_, err := b.LoadDefinition(ctx, "missing")
		assert.Error(t, err)
	}
	assert.Equal(t, "closed", b.State())

	id, err := b.SaveContent(ctx, lexicon.ContentRecord{Word: "cat", Sentence: "the cat sat"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}
