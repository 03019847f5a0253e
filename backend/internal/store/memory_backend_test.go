package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordweave/backend/internal/lexicon"
	apperrors "wordweave/backend/pkg/errors"
)

func TestMemoryBackend_ContentCursor(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	for _, w := range []string{"alpha", "beta", "gamma"} {
		_, err := m.SaveContent(ctx, lexicon.ContentRecord{Word: w, Sentence: w + " sentence", Category: "greek"})
		require.NoError(t, err)
	}

	// identical rows bump frequency instead of creating a new id
	id, err := m.SaveContent(ctx, lexicon.ContentRecord{Word: "beta", Sentence: "beta sentence", Category: "greek"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	recs, err := m.FetchContentSince(ctx, 1, 50)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "beta", recs[0].Word)
	assert.Equal(t, 2, recs[0].Frequency)

	recs, err = m.FetchContentSince(ctx, 0, 1)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	peers, err := m.WordsInCategory(ctx, "greek", "alpha", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta", "gamma"}, peers)
}

func TestMemoryBackend_DefinitionNotFound(t *testing.T) {
	_, err := NewMemoryBackend().LoadDefinition(context.Background(), "nothing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMemoryBackend_QAPairsNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()
	require.NoError(t, m.SaveQAPair(ctx, lexicon.QAPair{ID: "1", Question: "car", Answer: "a vehicle"}))
	require.NoError(t, m.SaveQAPair(ctx, lexicon.QAPair{ID: "2", Question: "bus", Answer: "a big vehicle"}))

	pairs, err := m.LoadQAPairs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "2", pairs[0].ID)
}
