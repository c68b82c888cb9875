package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetAndGet(t *testing.T) {
	c := New(time.Minute)
	c.Set("key", "value")

	got, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_ExpiredEntryDroppedOnRead(t *testing.T) {
	c := New(time.Minute)
	c.SetWithTTL("key", "value", -time.Second)

	_, ok := c.Get("key")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_Delete(t *testing.T) {
	c := New(time.Minute)
	c.Set("key", "value")
	c.Delete("key")

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestCache_Overwrite(t *testing.T) {
	c := New(time.Minute)
	c.Set("key", "old")
	c.Set("key", "new")

	got, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "new", got)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Purge(t *testing.T) {
	c := New(time.Minute)
	c.Set("fresh", 1)
	c.SetWithTTL("stale", 2, -time.Second)
	c.SetWithTTL("stale2", 3, -time.Second)
	require.Equal(t, 3, c.Len())

	c.Purge()
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("fresh")
	assert.True(t, ok)
}
