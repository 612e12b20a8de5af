package cache

import (
	"context"
	"time"

	"github.com/matzehuels/bookthickness/pkg/observability"
)

type instrumented struct {
	Cache
}

// Instrument reports every Get and Set of c to observability.Cache().
func Instrument(c Cache) Cache {
	if _, ok := c.(instrumented); ok {
		return c
	}
	return instrumented{Cache: c}
}

func (c instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, KeyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KeyType(key))
		}
	}
	return data, ok, err
}

func (c instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	}
	return err
}
