// Package cache stores computed thickness results between runs.
//
// A thickness query is pure: the same graph and options always produce the
// same embedding. The pipeline runner therefore keys results by a hash of
// the graph and the options that affect the answer, and consults a Cache
// before searching.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [BadgerCache]: an embedded badger key-value store
//   - [RedisCache]: a shared redis server (HTTP API deployments)
//   - [NullCache]: stores nothing (--no-cache)
//
// [Instrument] wraps any backend so hits and misses reach the observability
// cache hooks.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}
