// Shared key-value store contract. The simulation engine, admin controller,
// and API all talk to the store through this interface; Redis is the real
// backend and Memory serves tests and single-process runs.
package store

import (
	"context"
	"time"
)

// Store is the abstract storage contract: plain keys with optional TTL,
// conditional set, and Redis-style lists with negative (tail-relative)
// indices.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent or
	// expired; absence is never an error.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX stores value only if key is absent; reports whether it was set.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Exists reports whether key currently resolves to a live value.
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes the given keys; missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// RPush appends values to the tail of the list at key.
	RPush(ctx context.Context, key string, values ...string) error
	// LTrim keeps only the elements in [start, stop] (inclusive, negative
	// indices count from the tail).
	LTrim(ctx context.Context, key string, start, stop int64) error
	// LLen returns the list length (0 for a missing key).
	LLen(ctx context.Context, key string) (int64, error)
	// LRange returns the elements in [start, stop] (inclusive, negative
	// indices count from the tail).
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	// LIndex returns the element at index (-1 is the tail). ok is false when
	// the list is missing or the index is out of range.
	LIndex(ctx context.Context, key string, index int64) (value string, ok bool, err error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}
