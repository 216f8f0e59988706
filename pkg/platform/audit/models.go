// Package audit captures the decode engine's auditable actions: decode
// lifecycle, billable provider lookups and reference-data learning.
// Identifiers are masked before they reach an event; VINs identify
// vehicles and are treated as quasi-PII.
package audit

import (
	"context"
	"time"
)

// Category classifies audit events by their primary purpose. Categories
// drive retention and sampling policy, not storage layout.
type Category string

const (
	// CategoryOperations covers routine decode lifecycle events. High
	// volume; safe to sample.
	CategoryOperations Category = "operations"

	// CategoryProvider covers upstream provider lookups. These are
	// billable on commercial providers, so every one is kept.
	CategoryProvider Category = "provider"

	// CategoryRefData covers changes to learned reference data. Rare and
	// always kept.
	CategoryRefData Category = "refdata"
)

// Event is one audit record. Identifier carries the masked form only.
type Event struct {
	ID         string    `json:"id"`
	Category   Category  `json:"category"`
	Action     string    `json:"action"`
	Identifier string    `json:"identifier,omitempty"`
	Source     string    `json:"source,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Action names an auditable action.
type Action string

const (
	ActionDecodeRequested  Action = "decode.requested"
	ActionDecodeCompleted  Action = "decode.completed"
	ActionDecodeFailed     Action = "decode.failed"
	ActionDecodeCacheHit   Action = "decode.cache_hit"
	ActionLookupSucceeded  Action = "provider.lookup_succeeded"
	ActionLookupFailed     Action = "provider.lookup_failed"
	ActionProviderFallback Action = "provider.fallback"
	ActionWMILearned       Action = "refdata.wmi_learned"
	ActionCacheInvalidated Action = "cache.invalidated"
)

var actionCategories = map[Action]Category{
	ActionDecodeRequested:  CategoryOperations,
	ActionDecodeCompleted:  CategoryOperations,
	ActionDecodeFailed:     CategoryOperations,
	ActionDecodeCacheHit:   CategoryOperations,
	ActionCacheInvalidated: CategoryOperations,

	ActionLookupSucceeded:  CategoryProvider,
	ActionLookupFailed:     CategoryProvider,
	ActionProviderFallback: CategoryProvider,

	ActionWMILearned: CategoryRefData,
}

// Category returns the category for this action. Unknown actions default
// to CategoryOperations.
func (a Action) Category() Category {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. Implementations must tolerate concurrent
// Append calls.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context, identifier string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
