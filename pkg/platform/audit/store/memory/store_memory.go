// Package memory holds audit events in process. Used by tests and by CLI
// runs with no Postgres configured.
package memory

import (
	"context"
	"sort"
	"sync"

	audit "github.com/Shekel-Africa/vin-package-sub000/pkg/platform/audit"
)

// Store keeps events in emission order.
type Store struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewStore() *Store {
	return &Store{}
}

// Clear drops all stored events.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// List returns the events for one masked identifier, oldest first.
func (s *Store) List(_ context.Context, identifier string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []audit.Event
	for _, event := range s.events {
		if event.Identifier == identifier {
			matched = append(matched, event)
		}
	}
	return matched, nil
}

// ListRecent returns up to limit events, newest first.
func (s *Store) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recent := append([]audit.Event{}, s.events...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}
	return recent, nil
}
