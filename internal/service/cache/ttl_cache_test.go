package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCache_SetGet(t *testing.T) {
	c := NewTTLCache()
	c.Set("a", 1, time.Minute)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestTTLCache_Expiry(t *testing.T) {
	c := NewTTLCache()
	c.Set("a", 1, time.Nanosecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestTTLCache_Bounded(t *testing.T) {
	c := NewTTLCacheSize(3)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("c", 3, time.Minute)
	c.Set("d", 4, time.Minute)

	assert.LessOrEqual(t, c.Len(), 3)
	v, ok := c.Get("d")
	assert.True(t, ok)
	assert.Equal(t, 4, v)
}

func TestTTLCache_Bytes(t *testing.T) {
	c := NewTTLCache()
	assert.NoError(t, c.SetBytes("k", []byte("v"), time.Minute))

	b, ok, err := c.GetBytes("k")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)
}
