package port

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get for keys with no live entry.
var ErrKeyNotFound = errors.New("cache: key not found")

// CacheStore is a string-keyed store of serialized values. Entries
// have no expiry; they live until explicitly invalidated or the
// process restarts.
type CacheStore interface {
	// Has reports whether a live entry exists for key.
	Has(ctx context.Context, key string) (bool, error)

	// Get returns the exact bytes last set for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set inserts or overwrites the entry for key.
	Set(ctx context.Context, key string, val []byte) error

	// DeleteMatching removes every entry whose key matches the pattern
	// and returns how many were removed. A pattern is either an exact
	// key or a prefix followed by '*', e.g. "category-products-*".
	DeleteMatching(ctx context.Context, pattern string) (int, error)
}
