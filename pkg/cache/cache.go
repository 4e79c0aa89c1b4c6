package cache

import "time"

// Cache defines the interface for caching services.
// Get returns "" and a nil error when the key does not exist.
type Cache interface {
	Get(key string) (string, error)
	Set(key string, value interface{}, expiration time.Duration) error
	Delete(key string) error
	Close() error
}
