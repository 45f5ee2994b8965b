package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/relayout/pkg/observability"
)

// Instrumented reports hits, misses and writes of the wrapped cache to the
// registered observability cache hooks. The key type passed to the hooks is
// the segment before the hash, so "api:resolve:<sha>" reports "resolve".
type Instrumented struct {
	Cache
}

// NewInstrumented wraps c.
func NewInstrumented(c Cache) Cache {
	return &Instrumented{Cache: c}
}

// Get forwards to the wrapped cache and records a hit or miss.
func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

// Set forwards to the wrapped cache and records the write.
func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

func keyType(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return key
	}
	return parts[len(parts)-2]
}
