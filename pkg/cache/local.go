package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// LocalCache is an in-process Cache backed by ristretto.
type LocalCache struct {
	c *ristretto.Cache
}

// NewLocalCache creates a LocalCache holding at most maxItems entries.
func NewLocalCache(maxItems int64) (*LocalCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &LocalCache{c: c}, nil
}

func (l *LocalCache) Get(key string) (string, error) {
	val, ok := l.c.Get(key)
	if !ok {
		return "", nil
	}
	return val.(string), nil
}

// Set stores value as a string. ristretto applies writes asynchronously, so Set waits for the
// write buffers to drain before returning to make the value visible to the next Get.
func (l *LocalCache) Set(key string, value interface{}, expiration time.Duration) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}
	l.c.SetWithTTL(key, s, 1, expiration)
	l.c.Wait()
	return nil
}

func (l *LocalCache) Delete(key string) error {
	l.c.Del(key)
	return nil
}

func (l *LocalCache) Close() error {
	l.c.Close()
	return nil
}
