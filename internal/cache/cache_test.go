package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWithinTTL(t *testing.T) {
	c := NewTTL[int](time.Minute)
	c.Set("a", 42)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Zero(t, misses)
}

func TestGetAfterExpiry(t *testing.T) {
	now := time.Now()
	c := NewTTL[string](time.Minute)
	c.SetClock(func() time.Time { return now })
	c.Set("a", "fresh")

	now = now.Add(61 * time.Second)
	_, ok := c.Get("a")
	assert.False(t, ok)

	_, misses := c.Stats()
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, 1, c.Len(), "expired entry is retained for Peek")
}

func TestPeekServesExpiredEntries(t *testing.T) {
	now := time.Now()
	c := NewTTL[string](time.Minute)
	c.SetClock(func() time.Time { return now })
	c.Set("a", "old")

	now = now.Add(2 * time.Hour)
	v, age, ok := c.Peek("a")
	require.True(t, ok)
	assert.Equal(t, "old", v)
	assert.Equal(t, 2*time.Hour, age)

	_, _, ok = c.Peek("missing")
	assert.False(t, ok)
}

func TestSetRefreshesTimestamp(t *testing.T) {
	now := time.Now()
	c := NewTTL[int](time.Minute)
	c.SetClock(func() time.Time { return now })
	c.Set("a", 1)

	now = now.Add(59 * time.Second)
	c.Set("a", 2)

	now = now.Add(30 * time.Second)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestDelete(t *testing.T) {
	c := NewTTL[int](time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
}
