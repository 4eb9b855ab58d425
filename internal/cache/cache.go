// Package cache provides the key-value caching layer used for project
// reads. The cache is purely an optimization: the store stays the source of
// truth and every failure here degrades to a store read.
package cache

import (
	"context"
	"time"
)

// Cache is the contract services depend on. Values are JSON round-tripped
// by the implementations.
type Cache interface {
	// Get unmarshals the cached value into dest and reports whether the key
	// was present (and not expired).
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// DeletePattern removes every key matching a glob pattern such as
	// "projects:list:*" and returns the number of keys evicted.
	DeletePattern(ctx context.Context, pattern string) (int, error)
}
