// Package cache provides the key-value backends used to memoize search
// context and finished suggestions, plus the namespaced JSON layer on top.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Store.Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store is a byte-oriented key-value backend with per-entry TTL.
// Implementations must be safe for concurrent use; concurrent writes to the
// same key are last-write-wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}
