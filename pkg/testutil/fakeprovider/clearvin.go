package fakeprovider

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Lifetime of tokens the fake issues. Long enough that a test never trips
// the client's proactive refresh by accident.
const tokenLifetime = time.Hour

// Report is the payload the fake returns for a registered VIN.
type Report struct {
	Vehicle map[string]any `json:"vehicle"`
	Pricing map[string]any `json:"pricing"`
	Mileage map[string]any `json:"mileage"`
}

// ClearVIN serves the authenticated report API: a login endpoint exchanging
// credentials for a JWT, and a report endpoint behind bearer auth.
type ClearVIN struct {
	server   *httptest.Server
	email    string
	password string
	key      []byte

	mu      sync.Mutex
	reports map[string]Report
	valid   map[string]bool
	logins  int
	fetches int
	status  int
}

// NewClearVIN starts the fake with the only credential pair it accepts.
func NewClearVIN(email, password string) *ClearVIN {
	f := &ClearVIN{
		email:    email,
		password: password,
		key:      []byte("fakeprovider-signing-key"),
		reports:  map[string]Report{},
		valid:    map[string]bool{},
	}

	r := chi.NewRouter()
	r.Post("/auth/login", f.handleLogin)
	r.Get("/reports/{vin}/decode", f.handleReport)
	f.server = httptest.NewServer(r)
	return f
}

// URL is the base URL to hand to a source constructor.
func (f *ClearVIN) URL() string { return f.server.URL }

// Close shuts the underlying server down.
func (f *ClearVIN) Close() { f.server.Close() }

// Register maps a VIN to the report the fake will return for it.
func (f *ClearVIN) Register(vin string, report Report) {
	f.mu.Lock()
	f.reports[strings.ToUpper(vin)] = report
	f.mu.Unlock()
}

// RevokeTokens invalidates every token issued so far. The next report call
// answers 401, which is how tests drive the client's re-login path.
func (f *ClearVIN) RevokeTokens() {
	f.mu.Lock()
	f.valid = map[string]bool{}
	f.mu.Unlock()
}

// FailWith makes every following report call answer with the given HTTP
// status. Login keeps working. Zero restores normal behaviour.
func (f *ClearVIN) FailWith(status int) {
	f.mu.Lock()
	f.status = status
	f.mu.Unlock()
}

// Logins reports how many successful credential exchanges happened.
func (f *ClearVIN) Logins() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins
}

// ReportCalls reports how many report requests reached the fake, authorized
// or not.
func (f *ClearVIN) ReportCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func (f *ClearVIN) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed login body", http.StatusBadRequest)
		return
	}
	if req.Email != f.email || req.Password != f.password {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   req.Email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.key)
	if err != nil {
		http.Error(w, "token signing failed", http.StatusInternalServerError)
		return
	}

	f.mu.Lock()
	f.valid[token] = true
	f.logins++
	f.mu.Unlock()

	writeJSON(w, map[string]string{"token": token})
}

func (f *ClearVIN) handleReport(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	f.mu.Lock()
	f.fetches++
	status := f.status
	authorized := f.valid[token]
	report, known := f.reports[strings.ToUpper(chi.URLParam(r, "vin"))]
	f.mu.Unlock()

	if !authorized {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}
	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if !known {
		writeJSON(w, map[string]any{"status": "not_found", "report": Report{}})
		return
	}

	writeJSON(w, map[string]any{"status": "success", "report": report})
}
