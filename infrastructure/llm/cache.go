package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/ahrav/ragmark/internal/ports"
)

// cachedLLM memoizes oracle responses keyed by (model, prompt). Judging the
// same run twice, or resuming after an interruption, then costs nothing.
// Engine correctness never depends on the cache being present: cache failures
// fall through to the provider.
type cachedLLM struct {
	next  CoreLLM
	store ports.CacheStore
	ttl   time.Duration
}

// CacheMiddleware decorates the oracle with response caching. A zero ttl
// keeps entries forever.
func CacheMiddleware(store ports.CacheStore, ttl time.Duration) Middleware {
	return func(next CoreLLM) CoreLLM {
		return &cachedLLM{next: next, store: store, ttl: ttl}
	}
}

func (c *cachedLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, error) {
	key := cacheKey(c.next.GetModel(), prompt)

	if cached, ok, err := c.store.Get(ctx, key); err == nil && ok {
		return cached, nil
	}

	response, err := c.next.DoRequest(ctx, prompt, opts)
	if err != nil {
		return "", err
	}

	// Best effort: a failed write only loses the memoization.
	_ = c.store.Set(ctx, key, response, c.ttl)
	return response, nil
}

func (c *cachedLLM) GetModel() string { return c.next.GetModel() }

func cacheKey(model, prompt string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

var _ ports.CacheStore = (*MemoryCache)(nil)

// MemoryCache is a process-local ports.CacheStore. It suits single-run
// memoization; persistent stores plug in through the same interface.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryCacheEntry
}

type memoryCacheEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryCacheEntry)}
}

// Get implements ports.CacheStore.
func (m *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set implements ports.CacheStore.
func (m *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	entry := memoryCacheEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Len returns the number of live entries, for tests and introspection.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
