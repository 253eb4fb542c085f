package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// StatsCache caché en memoria con vencimiento. Guarda JSON para que el valor leído
// sea una copia independiente, igual que con Redis.
type StatsCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	data    []byte
	expires time.Time
}

// NewStatsCache crea la caché.
func NewStatsCache() *StatsCache {
	return &StatsCache{entries: make(map[string]cacheEntry), now: time.Now}
}

func (c *StatsCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && !c.now().Before(e.expires) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(e.data, dest)
}

func (c *StatsCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{data: data, expires: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}
