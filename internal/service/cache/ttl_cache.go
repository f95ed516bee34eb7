package cache

import (
	"context"
	"sync"
	"time"
)

// defaultTTLCacheEntries bounds TTLCache; one entry is one series document.
const defaultTTLCacheEntries = 512

type document struct {
	body      []byte
	expiresAt time.Time // zero never expires
}

func (d document) expired(now time.Time) bool {
	return !d.expiresAt.IsZero() && now.After(d.expiresAt)
}

// TTLCache is the process-local BytesCache used when no shared cache is
// configured. When full, expired documents are purged first and then the
// one closest to expiry is dropped.
type TTLCache struct {
	mu   sync.Mutex
	docs map[string]document
	max  int
	now  func() time.Time
}

func NewTTLCache() *TTLCache {
	return &TTLCache{docs: make(map[string]document), max: defaultTTLCacheEntries, now: time.Now}
}

func (c *TTLCache) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.docs[key]
	if !ok {
		return nil, false, nil
	}
	if d.expired(c.now()) {
		delete(c.docs, key)
		return nil, false, nil
	}
	return d.body, true, nil
}

// SetBytes stores value; ttl <= 0 never expires.
func (c *TTLCache) SetBytes(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	d := document{body: value}
	if ttl > 0 {
		d.expiresAt = now.Add(ttl)
	}
	if _, ok := c.docs[key]; !ok && len(c.docs) >= c.max {
		c.makeRoom(now)
	}
	c.docs[key] = d
	return nil
}

func (c *TTLCache) makeRoom(now time.Time) {
	victim := ""
	var soonest time.Time
	for k, d := range c.docs {
		if d.expired(now) {
			delete(c.docs, k)
			continue
		}
		if d.expiresAt.IsZero() {
			continue
		}
		if victim == "" || d.expiresAt.Before(soonest) {
			victim, soonest = k, d.expiresAt
		}
	}
	if len(c.docs) < c.max {
		return
	}
	if victim == "" {
		for k := range c.docs {
			victim = k
			break
		}
	}
	delete(c.docs, victim)
}

var (
	_ BytesCache = (*TTLCache)(nil)
	_ BytesCache = (*SharedCache)(nil)
)
