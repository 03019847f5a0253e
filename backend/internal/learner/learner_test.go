package learner

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordweave/backend/internal/lexicon"
)

type learnedEdge struct {
	kind     lexicon.RelationKind
	w1, w2   string
	label    string
	strength float64
}

// mockRelations records every write and accepts it
type mockRelations struct {
	mu          sync.Mutex
	edges       []learnedEdge
	definitions map[string]string
	panicOnDef  bool
}

func newMockRelations() *mockRelations {
	return &mockRelations{definitions: make(map[string]string)}
}

func (m *mockRelations) LearnSynonym(ctx context.Context, w1, w2 string, strength float64) bool {
	return m.add(learnedEdge{kind: lexicon.KindSynonym, w1: w1, w2: w2, strength: strength})
}

func (m *mockRelations) LearnAntonym(ctx context.Context, w1, w2 string, strength float64) bool {
	return m.add(learnedEdge{kind: lexicon.KindAntonym, w1: w1, w2: w2, strength: strength})
}

func (m *mockRelations) LearnAssociation(ctx context.Context, w1, w2, label string, strength float64) bool {
	return m.add(learnedEdge{kind: lexicon.KindAssociation, w1: w1, w2: w2, label: label, strength: strength})
}

func (m *mockRelations) LearnDefinition(ctx context.Context, word, text string, verified bool) bool {
	if m.panicOnDef {
		panic("definition table unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.definitions[word] = text
	return true
}

func (m *mockRelations) add(e learnedEdge) bool {
	if !lexicon.IsValidWord(e.w1) || !lexicon.IsValidWord(e.w2) || e.w1 == e.w2 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, e)
	return true
}

func (m *mockRelations) ofKind(kind lexicon.RelationKind) []learnedEdge {
	var out []learnedEdge
	for _, e := range m.edges {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestDefinitionDetection(t *testing.T) {
	tests := []struct {
		name     string
		word     string
		sentence string
		want     string
		rule     string
	}{
		{"means", "serendipity", "Serendipity means a happy accident.", "a happy accident", "means"},
		{"defined as", "gravity", "In physics, gravity is defined as the pull between masses!", "the pull between masses", "defined_as"},
		{"refers to", "ram", "RAM refers to working memory", "working memory", "refers_to"},
		{"is a", "cat", "A cat is a small animal.", "a small animal", "is_a"},
		{"stands for", "nasa", "NASA stands for the space agency", "the space agency", "stands_for"},
		{"describes", "melancholy", "Melancholy describes a quiet sadness.", "a quiet sadness", "stands_for"},
		{"means before is a", "ocean", "Ocean means the sea and is a body of water", "the sea and is a body of water", "means"},
		{"whole sentence", "dogs", "Dogs bark loudly at night.", "Dogs bark loudly at night", "whole_sentence"},
		{"multi word anchor", "ice cream", "Ice  cream is a frozen dessert", "a frozen dessert", "is_a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel := newMockRelations()
			l := New(rel, nil)

			result := l.LearnFromContextualData(context.Background(), tt.word, ContextMeta{}, tt.sentence)

			assert.True(t, result.Definition)
			assert.Equal(t, tt.rule, result.DefinitionBy)
			assert.Equal(t, tt.want, rel.definitions[tt.word])
		})
	}
}

func TestDefinitionDetection_NoMatch(t *testing.T) {
	rel := newMockRelations()
	l := New(rel, nil)

	result := l.LearnFromContextualData(context.Background(), "cat", ContextMeta{}, "My neighbour has a cat")
	assert.False(t, result.Definition)

	long := "Cats " + "really " + "do " + "sleep " + "a " + "lot " + "during " + "the " + "day " +
		"and " + "then " + "they " + "run " + "around " + "the " + "house " + "all " + "night " + "long " + "without " + "stopping"
	result = l.LearnFromContextualData(context.Background(), "cats", ContextMeta{}, long)
	assert.False(t, result.Definition)
	assert.Empty(t, rel.definitions)
}

func TestRelationDetection(t *testing.T) {
	tests := []struct {
		name     string
		sentence string
		kind     lexicon.RelationKind
		w1, w2   string
	}{
		{"another word for", "Happy is another word for glad.", lexicon.KindSynonym, "happy", "glad"},
		{"means the same as", "Big means the same as large", lexicon.KindSynonym, "big", "large"},
		{"same as", "A sofa is the same as a couch", lexicon.KindSynonym, "sofa", "couch"},
		{"similar to", "Fast is similar to quick", lexicon.KindSynonym, "fast", "quick"},
		{"also known as", "The car, also known as automobile, is fast", lexicon.KindSynonym, "car", "automobile"},
		{"aka", "Dad aka father", lexicon.KindSynonym, "dad", "father"},
		{"opposite", "Hot is the opposite of cold.", lexicon.KindAntonym, "hot", "cold"},
		{"contrary", "Love is the contrary of hate", lexicon.KindAntonym, "love", "hate"},
		{"as opposed to", "Day as opposed to night", lexicon.KindAntonym, "day", "night"},
		{"versus", "Cats versus dogs", lexicon.KindAntonym, "cats", "dogs"},
		{"vs", "Good vs. evil", lexicon.KindAntonym, "good", "evil"},
		{"unlike", "Unlike winter, summer is warm", lexicon.KindAntonym, "winter", "summer"},
		{"earliest rule wins", "Big is similar to large, unlike small", lexicon.KindSynonym, "big", "large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel := newMockRelations()
			l := New(rel, nil)

			l.LearnFromContextualData(context.Background(), tt.w1, ContextMeta{}, tt.sentence)

			typed := append(rel.ofKind(lexicon.KindSynonym), rel.ofKind(lexicon.KindAntonym)...)
			require.Len(t, typed, 1)
			assert.Equal(t, tt.kind, typed[0].kind)
			assert.Equal(t, tt.w1, typed[0].w1)
			assert.Equal(t, tt.w2, typed[0].w2)
			assert.Equal(t, 0.7, typed[0].strength)
		})
	}
}

func TestAssociationFanOut(t *testing.T) {
	rel := newMockRelations()
	l := New(rel, nil)

	result := l.LearnFromContextualData(context.Background(), "cat", ContextMeta{}, "The cat sat on the mat.")

	assocs := rel.ofKind(lexicon.KindAssociation)
	require.Len(t, assocs, 4)
	assert.Equal(t, 4, result.Associations)

	var targets []string
	for _, a := range assocs {
		assert.Equal(t, "cat", a.w1)
		assert.Equal(t, "sentence", a.label)
		assert.Equal(t, 0.3, a.strength)
		targets = append(targets, a.w2)
	}
	assert.Equal(t, []string{"the", "sat", "on", "mat"}, targets)
}

func TestAssociationFanOut_UsesCategory(t *testing.T) {
	rel := newMockRelations()
	l := New(rel, nil)

	l.LearnFromContextualData(context.Background(), "lion", ContextMeta{Category: "animals"}, "lion roars")

	assocs := rel.ofKind(lexicon.KindAssociation)
	require.Len(t, assocs, 1)
	assert.Equal(t, "animals", assocs[0].label)
}

func TestLearnFromContextualData_IsolatesPanics(t *testing.T) {
	rel := newMockRelations()
	rel.panicOnDef = true
	l := New(rel, NewPatternMemory())

	var result LearnResult
	assert.NotPanics(t, func() {
		result = l.LearnFromContextualData(context.Background(), "sun", ContextMeta{}, "Sun is a star")
	})

	assert.Equal(t, 1, result.Failures)
	assert.False(t, result.Definition)
	assert.Equal(t, 2, result.Associations)
	assert.Positive(t, result.Patterns)
}

func TestLearnFromContextualData_EmptyInput(t *testing.T) {
	l := New(newMockRelations(), NewPatternMemory())

	result := l.LearnFromContextualData(context.Background(), "  ", ContextMeta{}, "something")
	assert.False(t, result.Learned())

	result = l.LearnFromContextualData(context.Background(), "word", ContextMeta{}, "")
	assert.False(t, result.Learned())
}
