package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Cache stores, reference-data
// lookups and upstream clients return these (optionally wrapped) so callers
// can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entry does not exist in the store or lookup table
// - ErrExpired: cache entry exists but its TTL has elapsed
// - ErrConflict: write collides with an existing entry
// - ErrDisabled: a decoding source is administratively disabled
// - ErrUnavailable: upstream provider or backing store temporarily unreachable
//
// For validation errors (malformed identifiers, bad options), use
// pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrDisabled    = errors.New("disabled")
	ErrUnavailable = errors.New("unavailable")
)
