package cache

import (
	"context"
	"sync"
	"time"
)

const defaultSweepInterval = time.Minute

// MemCache evicts expired entries on read and sweeps the whole map from Set at most once per sweepInterval.
type MemCache struct {
	cache map[string]CachedSession
	mutex sync.RWMutex

	sweepInterval time.Duration
	lastSweep     time.Time
	now           func() time.Time
}

func NewMemCache() *MemCache {
	return &MemCache{
		cache:         make(map[string]CachedSession),
		sweepInterval: defaultSweepInterval,
		now:           time.Now,
	}
}

// Get returns the cached entry for a token. Expired entries are dropped on read.
func (m *MemCache) Get(_ context.Context, token string) (CachedSession, bool) {
	key := tokenKey(token)

	m.mutex.RLock()
	cached, exists := m.cache[key]
	m.mutex.RUnlock()

	if !exists {
		return CachedSession{}, false
	}

	if !cached.Fresh(m.now()) {
		m.mutex.Lock()
		delete(m.cache, key)
		m.mutex.Unlock()
		return CachedSession{}, false
	}

	return cached, true
}

func (m *MemCache) Set(_ context.Context, token string, entry CachedSession) {
	now := m.now()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if now.Sub(m.lastSweep) >= m.sweepInterval {
		m.sweep(now)
	}

	if !entry.Fresh(now) {
		return
	}

	m.cache[tokenKey(token)] = entry
}

func (m *MemCache) Delete(_ context.Context, token string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.cache, tokenKey(token))
}

// sweep must be called with the write lock held.
func (m *MemCache) sweep(now time.Time) {
	for key, cached := range m.cache {
		if !cached.Fresh(now) {
			delete(m.cache, key)
		}
	}
	m.lastSweep = now
}
