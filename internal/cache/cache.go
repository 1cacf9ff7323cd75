// Package cache provides key-value caching with LRU semantics behind a
// provider registry. The application uses it to keep backend building and
// unit lookups warm between reference-data refreshes.
package cache

// EvictCallback is called when an entry is evicted. Not every provider
// supports eviction callbacks.
type EvictCallback func(key string, value []byte)

// Logger receives error reports from cache operations that cannot surface an
// error to the caller.
type Logger interface {
	Error(msg string, err error)
}

// Cache is a byte-value cache with LRU semantics. Implementations may be
// in-memory or backed by Redis/Valkey.
type Cache interface {
	// Get retrieves a value by key, reporting whether it was found.
	Get(key string) ([]byte, bool)

	// Set stores a value, overwriting any existing entry for the key.
	Set(key string, value []byte)

	// Contains checks for a key without affecting LRU ordering.
	Contains(key string) bool

	// Len returns the current number of entries.
	Len() int

	// Close releases resources such as network connections.
	Close() error
}
