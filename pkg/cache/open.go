package cache

import (
	"context"
	"fmt"

	"github.com/matzehuels/bookthickness/pkg/errors"
)

// Backend names a cache implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendBadger Backend = "badger"
	BackendRedis  Backend = "redis"
	BackendNone   Backend = "none"
)

// Open creates the backend named by kind. location is a directory for the
// file and badger backends and a URL for redis; it is ignored for none.
// The returned cache is instrumented.
func Open(ctx context.Context, kind Backend, location string) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch kind {
	case BackendFile, "":
		c, err = NewFileCache(location)
	case BackendBadger:
		c, err = NewBadgerCache(location)
	case BackendRedis:
		c, err = NewRedisCache(ctx, location)
	case BackendNone:
		c = NewNullCache()
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache at %q: %w", kind, location, err)
	}
	return Instrument(c), nil
}
