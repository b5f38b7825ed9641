package cache

import (
	"sync"
	"time"
)

type entry struct {
	v   any
	exp time.Time
}

// TTLCache is an in-process cache with per-entry expiry and a hard entry
// bound. When full, expired entries are swept first; if none expired, the
// entry closest to expiry is evicted.
type TTLCache struct {
	mu      sync.RWMutex
	m       map[string]entry
	maxSize int
}

const DefaultMaxEntries = 4096

func NewTTLCache() *TTLCache {
	return NewTTLCacheSize(DefaultMaxEntries)
}

func NewTTLCacheSize(maxSize int) *TTLCache {
	if maxSize <= 0 {
		maxSize = DefaultMaxEntries
	}
	return &TTLCache{m: make(map[string]entry), maxSize: maxSize}
}

func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.v, true
}

func (c *TTLCache) Set(key string, v any, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	c.mu.Lock()
	if _, exists := c.m[key]; !exists && len(c.m) >= c.maxSize {
		c.evictLocked()
	}
	c.m[key] = entry{v: v, exp: exp}
	c.mu.Unlock()
}

func (c *TTLCache) evictLocked() {
	now := time.Now()
	var victim string
	var victimExp time.Time
	for k, e := range c.m {
		if !e.exp.IsZero() && now.After(e.exp) {
			delete(c.m, k)
		} else if victim == "" || (!e.exp.IsZero() && (victimExp.IsZero() || e.exp.Before(victimExp))) {
			victim = k
			victimExp = e.exp
		}
	}
	if len(c.m) >= c.maxSize && victim != "" {
		delete(c.m, victim)
	}
}

func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Implement BytesCache
func (c *TTLCache) GetBytes(key string) ([]byte, bool, error) {
	if v, ok := c.Get(key); ok {
		if b, ok2 := v.([]byte); ok2 {
			return b, true, nil
		}
		return nil, false, nil
	}
	return nil, false, nil
}

func (c *TTLCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	c.Set(key, value, ttl)
	return nil
}
