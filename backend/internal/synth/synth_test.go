package synth

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordweave/backend/internal/cache"
	"wordweave/backend/internal/learner"
	"wordweave/backend/internal/lexicon"
	"wordweave/backend/internal/store"
)

func newTestGraph(t *testing.T) *store.RelationStore {
	t.Helper()
	c, err := cache.Open("", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return store.NewRelationStore(store.NewMemoryBackend(), c, store.Options{})
}

// relatedOnlyGraph exposes related words without any typed view, which
// leaves only the generic fill available.
type relatedOnlyGraph struct {
	related []lexicon.RelatedWord
}

func (g relatedOnlyGraph) GetDefinition(ctx context.Context, word string) (lexicon.Definition, bool) {
	return lexicon.Definition{}, false
}
func (g relatedOnlyGraph) GetSynonyms(ctx context.Context, word string) []lexicon.WordStrength {
	return nil
}
func (g relatedOnlyGraph) GetAntonyms(ctx context.Context, word string) []lexicon.WordStrength {
	return nil
}
func (g relatedOnlyGraph) GetAssociations(ctx context.Context, word string) []lexicon.WordStrength {
	return nil
}
func (g relatedOnlyGraph) GetRelatedWords(ctx context.Context, word string, threshold float64) []lexicon.RelatedWord {
	return g.related
}

type fixedPatterns map[string]map[string]int

func (p fixedPatterns) Outputs(key string) map[string]int {
	out := make(map[string]int, len(p[key]))
	for k, v := range p[key] {
		out[k] = v
	}
	return out
}

func (p fixedPatterns) TopUnigrams(n int) []string { return nil }

func matchesSkeleton(sentence string, skeletons []string, concept string) bool {
	for _, sk := range skeletons {
		prefix := lexicon.Capitalize(strings.SplitN(strings.Replace(sk, "%s", concept, 1), "%s", 2)[0])
		if strings.HasPrefix(sentence, prefix) {
			return true
		}
	}
	return false
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func TestConceptualSentence_Definition(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)
	require.True(t, g.LearnDefinition(ctx, "cat", "a small animal", true))

	for seed := int64(0); seed < 12; seed++ {
		s := New(g, nil, rand.New(rand.NewSource(seed)))
		got := s.GenerateConceptualSentence(ctx, "cat", 3, 15)
		assert.Contains(t, got, "a small animal")
		assert.True(t, startsUpper(got), got)
		assert.True(t, strings.HasSuffix(got, "."), got)
	}
}

func TestConceptualSentence_DefinitionTrimmed(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)
	require.True(t, g.LearnDefinition(ctx, "river", "A large natural stream of water!", false))

	got := New(g, nil, rand.New(rand.NewSource(3))).GenerateConceptualSentence(ctx, "river", 3, 15)
	assert.Contains(t, got, "a large natural stream of water.")
	assert.NotContains(t, got, "!")
}

func TestConceptualSentence_ShortDefinitionFallsThrough(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)
	require.True(t, g.LearnDefinition(ctx, "happy", "glad", false))
	require.True(t, g.LearnSynonym(ctx, "happy", "cheerful", 0.8))

	got := New(g, nil, rand.New(rand.NewSource(1))).GenerateConceptualSentence(ctx, "happy", 3, 15)
	assert.Contains(t, got, "cheerful")
}

func TestConceptualSentence_Synonym(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)
	require.True(t, g.LearnSynonym(ctx, "quick", "fast", 0.8))
	require.True(t, g.LearnSynonym(ctx, "quick", "rapid", 0.7))
	require.True(t, g.LearnAntonym(ctx, "quick", "slow", 0.9))

	for seed := int64(0); seed < 12; seed++ {
		got := New(g, nil, rand.New(rand.NewSource(seed))).GenerateConceptualSentence(ctx, "quick", 3, 15)
		assert.True(t, matchesSkeleton(got, synonymSkeletons, "quick"), got)
		assert.NotContains(t, got, "slow")
		assert.True(t, strings.Contains(got, "fast") || strings.Contains(got, "rapid"), got)
	}
}

func TestConceptualSentence_GenericFallback(t *testing.T) {
	ctx := context.Background()
	g := relatedOnlyGraph{related: []lexicon.RelatedWord{
		{Word: "sand", Kind: lexicon.KindAssociation, Strength: 0.4},
		{Word: "waves", Kind: lexicon.KindAssociation, Strength: 0.3},
	}}

	got := New(g, nil, rand.New(rand.NewSource(2))).GenerateConceptualSentence(ctx, "beach", 3, 15)
	assert.True(t, matchesSkeleton(got, genericSkeletons, "beach"), got)
	assert.Contains(t, got, "sand")
	assert.Contains(t, got, "waves")

	// a single related word is not enough
	g.related = g.related[:1]
	assert.Equal(t, "", New(g, nil, rand.New(rand.NewSource(2))).GenerateConceptualSentence(ctx, "beach", 3, 15))
}

func TestConceptualSentence_Antonym(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)
	require.True(t, g.LearnAntonym(ctx, "hot", "cold", 0.8))

	got := New(g, nil, rand.New(rand.NewSource(1))).GenerateConceptualSentence(ctx, "hot", 3, 15)
	assert.Contains(t, got, "cold")
}

func TestConceptualSentence_Associations(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)
	for _, w := range []string{"milk", "fur", "whiskers", "toy"} {
		require.True(t, g.LearnAssociation(ctx, "kitten", w, "sentence", 0.3))
	}

	got := New(g, nil, rand.New(rand.NewSource(5))).GenerateConceptualSentence(ctx, "kitten", 3, 15)
	assert.Contains(t, got, " and ")
	assert.Contains(t, got, ", ")
}

func TestConceptualSentence_NoData(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)
	s := New(g, nil, rand.New(rand.NewSource(1)))

	assert.Equal(t, "", s.GenerateConceptualSentence(ctx, "ghost", 3, 15))

	require.True(t, g.LearnAssociation(ctx, "ghost", "sheet", "sentence", 0.3))
	assert.Equal(t, "", s.GenerateConceptualSentence(ctx, "ghost", 3, 15))

	assert.Equal(t, "", s.GenerateConceptualSentence(ctx, "42", 3, 15))
}

func TestRelationWalk_NeverRepeats(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)
	words := []string{"alpha", "beta", "gamma", "delta", "omega"}
	for i, a := range words {
		for j, b := range words {
			if i < j {
				g.LearnSynonym(ctx, a, b, 0.5)
				g.LearnAssociation(ctx, b, a, "sentence", 0.9)
			}
		}
	}

	for seed := int64(0); seed < 20; seed++ {
		s := New(g, nil, rand.New(rand.NewSource(seed)))
		got := s.GenerateSentenceWithRelations(ctx, "alpha", 2, 12)
		require.NotEmpty(t, got)

		seen := make(map[string]bool)
		for _, w := range strings.Fields(strings.ToLower(strings.TrimSuffix(got, "."))) {
			assert.False(t, seen[w], "repeated %q in %q", w, got)
			seen[w] = true
		}
		assert.Len(t, seen, len(words))
	}
}

func TestRelationWalk_PhraseBlocksItsParts(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)
	require.True(t, g.LearnSynonym(ctx, "ice cream", "cream", 0.9))
	require.True(t, g.LearnAssociation(ctx, "cream", "ice", "sentence", 0.8))
	require.True(t, g.LearnAssociation(ctx, "ice cream", "dessert", "sentence", 0.5))

	for seed := int64(0); seed < 10; seed++ {
		s := New(g, nil, rand.New(rand.NewSource(seed)))
		assert.Equal(t, "Ice cream dessert.", s.GenerateSentenceWithRelations(ctx, "ice cream", 1, 10))
		assert.Equal(t, "Cream ice.", s.GenerateSentenceWithRelations(ctx, "cream", 1, 10))
	}
}

func TestRelationWalk_WeightsKinds(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)
	require.True(t, g.LearnSynonym(ctx, "big", "large", 0.6))
	require.True(t, g.LearnAssociation(ctx, "big", "elephant", "sentence", 0.8))
	require.True(t, g.LearnAntonym(ctx, "big", "small", 1.0))

	s := New(g, nil, rand.New(rand.NewSource(1)))
	assert.Equal(t, "Big large.", s.GenerateSentenceWithRelations(ctx, "big", 1, 2))
}

func TestRelationWalk_MinLen(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)
	require.True(t, g.LearnAssociation(ctx, "lonely", "island", "sentence", 0.3))

	s := New(g, nil, rand.New(rand.NewSource(1)))
	assert.Equal(t, "", s.GenerateSentenceWithRelations(ctx, "lonely", 3, 10))
	assert.Equal(t, "Lonely island.", s.GenerateSentenceWithRelations(ctx, "lonely", 2, 10))
}

func TestFrequencyWalk(t *testing.T) {
	ctx := context.Background()
	patterns := learner.NewPatternMemory()
	patterns.Observe("the cat sat on the mat", "")

	s := New(newTestGraph(t), patterns, rand.New(rand.NewSource(1)))
	assert.Equal(t, "Cat sat on the mat.", s.GenerateFrequencyWalk(ctx, "cat", 2, 10))
	assert.Equal(t, "Cat sat.", s.GenerateFrequencyWalk(ctx, "cat", 2, 2))
	assert.Equal(t, "", s.GenerateFrequencyWalk(ctx, "dog", 2, 10))

	random := s.GenerateFrequencyWalk(ctx, "", 2, 10)
	assert.NotEmpty(t, random)

	assert.Equal(t, "", New(newTestGraph(t), nil, rand.New(rand.NewSource(1))).GenerateFrequencyWalk(ctx, "cat", 1, 5))
}

func TestFrequencyWalk_PhraseBlocksItsParts(t *testing.T) {
	ctx := context.Background()
	patterns := fixedPatterns{
		"ice cream": {"cream": 5, "cold": 1},
		"cold":      {"ice": 1},
	}

	for seed := int64(0); seed < 10; seed++ {
		s := New(newTestGraph(t), patterns, rand.New(rand.NewSource(seed)))
		assert.Equal(t, "Ice cream cold.", s.GenerateFrequencyWalk(ctx, "ice cream", 1, 10))
	}
}

func TestEmotionalSentence(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)
	s := New(g, learner.NewPatternMemory(), rand.New(rand.NewSource(9)))

	assert.Equal(t, "", s.GenerateEmotionalSentence(ctx, Happy, 2, 8))

	require.True(t, g.LearnSynonym(ctx, "smile", "grin", 0.9))
	assert.Equal(t, "Smile grin.", s.GenerateEmotionalSentence(ctx, Happy, 2, 8))

	assert.Equal(t, EmotionPool(Neutral), EmotionPool(Emotion("bored")))
}
