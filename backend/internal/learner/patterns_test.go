package learner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordweave/backend/internal/cache"
)

func TestPatternMemory_Observe(t *testing.T) {
	p := NewPatternMemory()

	touched := p.Observe("The cat sat.", "pets")
	assert.Equal(t, 5, touched)
	assert.Equal(t, 5, p.Len())

	p.Observe("the cat ran", "pets")

	kp, ok := p.Get("the")
	require.True(t, ok)
	assert.Equal(t, 2, kp.Frequency)
	assert.Equal(t, map[string]int{"cat": 2}, kp.Outputs)

	assert.Equal(t, map[string]int{"sat": 1, "ran": 1}, p.Outputs("the cat"))
	assert.Nil(t, p.Outputs("dog"))

	assert.Equal(t, []string{"cat", "the"}, p.TopUnigrams(5))
}

func TestPatternMemory_ContextWindow(t *testing.T) {
	p := NewPatternMemory()
	for i := 0; i < 15; i++ {
		p.Observe("hello world", fmt.Sprintf("ctx-%d", i))
	}

	kp, ok := p.Get("hello")
	require.True(t, ok)
	assert.Equal(t, 15, kp.Frequency)
	require.Len(t, kp.Contexts, 10)
	assert.Equal(t, "ctx-5", kp.Contexts[0])
	assert.Equal(t, "ctx-14", kp.Contexts[9])
}

func TestPatternMemory_CacheRoundTrip(t *testing.T) {
	c, err := cache.Open("", 0)
	require.NoError(t, err)
	defer c.Close()

	p := NewPatternMemory()
	p.Observe("rain falls softly", "weather")
	require.NoError(t, p.Flush(c, 0))

	restored := NewPatternMemory()
	ok, err := restored.Load(c)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p.Snapshot(), restored.Snapshot())

	empty := NewPatternMemory()
	other, err := cache.Open("", 0)
	require.NoError(t, err)
	defer other.Close()
	ok, err = empty.Load(other)
	require.NoError(t, err)
	assert.False(t, ok)
}
