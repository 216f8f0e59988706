// Package source defines the decoding source contract: a named, prioritized,
// independently enable-able unit that attempts to decode one identifier.
// Sources never return Go errors from Decode; every internal failure is
// flattened into a failed Result so the chain can keep going.
package source

//go:generate mockgen -source=source.go -destination=mocks/mocks.go -package=mocks Source

import (
	"context"
	"time"

	"github.com/Shekel-Africa/vin-package-sub000/pkg/vehicle"
)

// Well-known source names.
const (
	NameLocal    = "local"
	NameNHTSA    = "nhtsa_api"
	NameClearVIN = "clearvin"
)

// Source is one decoding collaborator. Implementations must be safe for
// concurrent Decode calls on different identifiers.
type Source interface {
	// Name returns the stable identifier used in priority tables and
	// merge metadata.
	Name() string

	// Priority orders sources; lower values are tried and trusted first.
	Priority() int

	// Enabled reports whether the chain should consult this source.
	Enabled() bool

	// SetEnabled toggles the source. The local source is the guaranteed
	// fallback and may ignore disable requests.
	SetEnabled(enabled bool)

	// CanHandle is the fast pre-check; false means decode is skipped
	// silently, not recorded as a failure.
	CanHandle(id vehicle.Identifier) bool

	// Decode attempts one identifier. Failures come back as a failed
	// Result, never as a panic or error.
	Decode(ctx context.Context, id vehicle.Identifier) Result
}

// Metadata describes how a single decode attempt went.
type Metadata struct {
	ExecutionTime time.Duration `json:"execution_time"`
	CacheHit      bool          `json:"cache_hit,omitempty"`
	Attempts      int           `json:"attempts,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

// Result is the outcome of one source for one identifier. Produced fresh
// per call and never mutated after return.
type Result struct {
	Success  bool           `json:"success"`
	Data     map[string]any `json:"data,omitempty"`
	Source   string         `json:"source"`
	Err      string         `json:"error,omitempty"`
	Metadata Metadata       `json:"metadata"`
}

// NewSuccess builds a successful Result.
func NewSuccess(name string, data map[string]any, md Metadata) Result {
	if data == nil {
		data = map[string]any{}
	}
	return Result{
		Success:  true,
		Data:     data,
		Source:   name,
		Metadata: md,
	}
}

// NewFailure builds a failed Result. A failed result always carries a
// reason and an empty data map.
func NewFailure(name, reason string, md Metadata) Result {
	if reason == "" {
		reason = "decode failed"
	}
	return Result{
		Success:  false,
		Data:     map[string]any{},
		Source:   name,
		Err:      reason,
		Metadata: md,
	}
}
