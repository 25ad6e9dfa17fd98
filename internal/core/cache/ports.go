package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist. Callers that
// treat absence as a domain condition (e.g. a missing session token) match
// it with errors.Is instead of parsing message text.
var ErrNotFound = errors.New("cache: key not found")

// Cache defines the key-value storage operations this service relies on.
// This is a port that can be implemented by different providers (Redis,
// Memcached, an in-memory map in tests, ...).
type Cache interface {
	// Get retrieves a value by key. Returns ErrNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the specified key and TTL.
	// TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Ping checks if the storage service is reachable.
	Ping(ctx context.Context) error

	// Close closes the storage connection.
	Close() error
}
