package cache

import (
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

func init() {
	Register("memory", newMemoryCache)
}

// memoryCache is the in-process provider, an expirable LRU sized by
// ProviderConfig.Size. It is the default for single-office deployments where
// no Valkey instance is available.
type memoryCache struct {
	entries *lru.LRU[string, []byte]
}

func newMemoryCache(cfg ProviderConfig) (Cache, error) {
	return &memoryCache{
		entries: lru.NewLRU[string, []byte](cfg.Size, (func(string, []byte))(cfg.OnEvict), cfg.TTL),
	}, nil
}

func (m *memoryCache) Get(key string) ([]byte, bool) { return m.entries.Get(key) }

func (m *memoryCache) Set(key string, value []byte) { m.entries.Add(key, value) }

func (m *memoryCache) Contains(key string) bool { return m.entries.Contains(key) }

func (m *memoryCache) Len() int { return m.entries.Len() }

func (m *memoryCache) Close() error { return nil }
