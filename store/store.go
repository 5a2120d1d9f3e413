// Package store provides the cache used by the tools to share access tokens
// and API responses between calls and processes.
package store

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/nutritionai", "store")

// ErrNotFound is returned on cache miss.
var ErrNotFound = errors.New("not found")

// Cache is a key-value store with expiration.
type Cache interface {
	// Get returns the value, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores the value, ttl of zero means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the value, it is not an error if the key does not exist.
	Delete(ctx context.Context, key string) error
}
