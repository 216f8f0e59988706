// Package fakeprovider hosts in-process stand-ins for the upstream decode
// APIs. Tests point a source, or a whole CLI invocation, at a fake's URL
// instead of stubbing transport internals.
package fakeprovider

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// VPIC serves the flat-format DecodeVinValues endpoint of the public
// vehicle API. Unregistered VINs still answer 200 with an error row, which
// is how the real service reports unknown identifiers.
type VPIC struct {
	server *httptest.Server

	mu     sync.Mutex
	rows   map[string]map[string]string
	status int
	calls  int
}

// NewVPIC starts the fake. Callers own the lifecycle and must Close it.
func NewVPIC() *VPIC {
	f := &VPIC{rows: map[string]map[string]string{}}

	r := chi.NewRouter()
	r.Get("/vehicles/DecodeVinValues/{vin}", f.handleDecode)
	f.server = httptest.NewServer(r)
	return f
}

// URL is the base URL to hand to a source constructor.
func (f *VPIC) URL() string { return f.server.URL }

// Close shuts the underlying server down.
func (f *VPIC) Close() { f.server.Close() }

// Register maps a VIN to the result row the fake will return for it.
func (f *VPIC) Register(vin string, row map[string]string) {
	f.mu.Lock()
	f.rows[strings.ToUpper(vin)] = row
	f.mu.Unlock()
}

// FailWith makes every following decode call answer with the given HTTP
// status. Zero restores normal behaviour.
func (f *VPIC) FailWith(status int) {
	f.mu.Lock()
	f.status = status
	f.mu.Unlock()
}

// Calls reports how many decode requests reached the fake.
func (f *VPIC) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *VPIC) handleDecode(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls++
	status := f.status
	row, known := f.rows[strings.ToUpper(chi.URLParam(r, "vin"))]
	f.mu.Unlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if r.URL.Query().Get("format") != "json" {
		http.Error(w, "format must be json", http.StatusBadRequest)
		return
	}
	if !known {
		row = map[string]string{
			"ErrorCode": "8",
			"ErrorText": "8 - No detailed data available",
		}
	}

	writeJSON(w, map[string]any{
		"Count":   1,
		"Message": "Results returned successfully",
		"Results": []map[string]string{row},
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
