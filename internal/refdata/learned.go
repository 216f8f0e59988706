package refdata

import (
	"strings"
	"sync"
)

// Learned is the additive WMI overlay one decoder instance owns. Remote
// decodes that report a manufacturer for a WMI the built-in table does not
// know feed it through Learn, so later local-only decodes recognize the
// prefix.
//
// The overlay is one-way: entries are only ever added, never updated, and a
// built-in WMI is never shadowed. Safe for concurrent use;
// last-write-wins on a racing first Learn of the same WMI is acceptable.
type Learned struct {
	tables *Tables

	mu      sync.RWMutex
	entries map[string]string
}

// NewLearned creates an empty overlay on top of the built-in tables.
func NewLearned(tables *Tables) *Learned {
	return &Learned{
		tables:  tables,
		entries: make(map[string]string),
	}
}

// Learn records a WMI to manufacturer mapping. It reports whether the entry
// was added: built-in WMIs, already-learned WMIs and blank input are
// ignored.
func (l *Learned) Learn(wmi, manufacturer string) bool {
	wmi = strings.ToUpper(strings.TrimSpace(wmi))
	manufacturer = strings.TrimSpace(manufacturer)
	if len(wmi) != 3 || manufacturer == "" {
		return false
	}
	if l.tables.KnownWMI(wmi) {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[wmi]; ok {
		return false
	}
	l.entries[wmi] = manufacturer
	return true
}

// Lookup resolves a WMI against the built-in table first, then the overlay.
func (l *Learned) Lookup(wmi string) (string, bool) {
	wmi = strings.ToUpper(strings.TrimSpace(wmi))
	if name, ok := l.tables.MakeForWMI(wmi); ok {
		return name, true
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	name, ok := l.entries[wmi]
	return name, ok
}

// Len returns the number of learned (non-built-in) entries.
func (l *Learned) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Snapshot copies the learned entries, for persistence and introspection.
func (l *Learned) Snapshot() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]string, len(l.entries))
	for k, v := range l.entries {
		out[k] = v
	}
	return out
}
