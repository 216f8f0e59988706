// Package cache defines the opaque key/value contract the decoding engine
// persists through, the identifier-based key scheme, and three stores that
// satisfy the contract: in-memory, Redis and Postgres.
//
// The contract is deliberately non-transactional: Get/Set/Delete/Has are
// point-in-time calls, the engine never assumes atomicity between a check
// and a later write, and a racing redundant decode is acceptable. Store
// failures degrade to cache misses and failed writes; they are never fatal
// to a decode.
package cache

//go:generate mockgen -source=cache.go -destination=mocks/mocks.go -package=mocks Cache

import (
	"context"
	"time"
)

// Cache is the opaque TTL key/value contract. A zero ttl on Set means the
// entry does not expire.
type Cache interface {
	// Get returns the value for key, or ok=false when absent or expired.
	Get(ctx context.Context, key string) (value string, ok bool)
	// Set stores value under key with the given TTL and reports success.
	Set(ctx context.Context, key, value string, ttl time.Duration) bool
	// Delete removes key and reports whether an entry was removed.
	Delete(ctx context.Context, key string) bool
	// Has reports whether key holds a live entry.
	Has(ctx context.Context, key string) bool
}
