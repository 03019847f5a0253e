package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *BadgerCache {
	t.Helper()
	c, err := Open("", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestBadgerCache_SetGetDelete(t *testing.T) {
	c := openTestCache(t)

	type entry struct {
		Word     string  `json:"word"`
		Strength float64 `json:"strength"`
	}

	require.NoError(t, c.Set("syn:happy", []entry{{"glad", 0.8}}, 0))

	var got []entry
	ok, err := c.Get("syn:happy", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []entry{{"glad", 0.8}}, got)

	require.NoError(t, c.Delete("syn:happy"))
	ok, err = c.Get("syn:happy", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBadgerCache_Miss(t *testing.T) {
	c := openTestCache(t)
	var v string
	ok, err := c.Get("absent", &v)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBadgerCache_TTLExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping slow TTL test")
	}
	c := openTestCache(t)

	require.NoError(t, c.Set(KeyCursor, int64(7), time.Second))
	time.Sleep(2100 * time.Millisecond)

	var cursor int64
	ok, err := c.Get(KeyCursor, &cursor)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAppendCapped(t *testing.T) {
	c := openTestCache(t)

	for i := 0; i < 8; i++ {
		require.NoError(t, AppendCapped(c, KeyActivityLog, i, 5, 0))
	}

	var got []int
	ok, err := c.Get(KeyActivityLog, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{3, 4, 5, 6, 7}, got)
}
