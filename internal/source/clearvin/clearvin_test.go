package clearvin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/Shekel-Africa/vin-package-sub000/internal/source"
	"github.com/Shekel-Africa/vin-package-sub000/internal/source/clearvin"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/platform/circuit"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/platform/httpclient"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/vehicle"
)

const (
	testEmail    = "ops@example.com"
	testPassword = "hunter2"
)

// fakeReportAPI stands in for the commercial provider: JWT login plus a
// bearer-protected report endpoint.
type fakeReportAPI struct {
	t        *testing.T
	tokenTTL time.Duration
	vehicle  map[string]any
	pricing  map[string]any
	mileage  map[string]any

	logins  atomic.Int32
	reports atomic.Int32

	mu      sync.Mutex
	revoked map[string]bool
	last    string
}

func newFakeReportAPI(t *testing.T) *fakeReportAPI {
	return &fakeReportAPI{
		t:        t,
		tokenTTL: time.Hour,
		revoked:  map[string]bool{},
		vehicle: map[string]any{
			"make":       "HONDA",
			"model":      "Accord",
			"year":       2003,
			"trim":       "EX-V6",
			"engine":     "3.0L V6 SOHC VTEC",
			"made_in":    "United States",
			"dimensions": map[string]any{"length_in": 187.6, "wheelbase_in": 105.1},
			"seating":    map[string]any{"capacity": 5},
			"airbags":    "Front and side",
			"color":      "",
		},
		pricing: map[string]any{"retail_usd": 4200, "trade_in_usd": 3500},
		mileage: map[string]any{"city_mpg": 21, "highway_mpg": 30},
	}
}

func (f *fakeReportAPI) server() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", f.handleLogin)
	mux.HandleFunc("GET /reports/{vin}/decode", f.handleReport)
	return httptest.NewServer(mux)
}

func (f *fakeReportAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req["email"] != testEmail || req["password"] != testPassword {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	n := f.logins.Add(1)
	token := signedToken(f.t, time.Now().Add(f.tokenTTL), int(n))
	f.mu.Lock()
	f.last = token
	f.mu.Unlock()
	_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (f *fakeReportAPI) handleReport(w http.ResponseWriter, r *http.Request) {
	f.reports.Add(1)
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	f.mu.Lock()
	rejected := token == "" || f.revoked[token]
	f.mu.Unlock()
	if rejected {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"report": map[string]any{
			"vehicle": f.vehicle,
			"pricing": f.pricing,
			"mileage": f.mileage,
		},
	})
}

func (f *fakeReportAPI) revokeCurrent() {
	f.mu.Lock()
	f.revoked[f.last] = true
	f.mu.Unlock()
}

func signedToken(t *testing.T, exp time.Time, id int) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        strconv.Itoa(id),
	})
	signed, err := token.SignedString([]byte("fake-signing-key"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

func fastClient() *httpclient.Client {
	return httpclient.New(time.Second,
		httpclient.WithMaxAttempts(2),
		httpclient.WithBaseDelay(time.Millisecond),
	)
}

type ClearVINSourceSuite struct {
	suite.Suite
	id vehicle.Identifier
}

func TestClearVINSourceSuite(t *testing.T) {
	suite.Run(t, new(ClearVINSourceSuite))
}

func (s *ClearVINSourceSuite) SetupTest() {
	s.id = vehicle.MustParseIdentifier("1HGCM82633A004352")
}

func (s *ClearVINSourceSuite) newSource(baseURL string, opts ...clearvin.Option) *clearvin.Source {
	base := []clearvin.Option{clearvin.WithHTTPClient(fastClient())}
	return clearvin.New(baseURL, testEmail, testPassword, append(base, opts...)...)
}

func (s *ClearVINSourceSuite) TestIdentity() {
	src := clearvin.New("http://unused", testEmail, testPassword)
	s.Equal(source.NameClearVIN, src.Name())
	s.Equal(clearvin.DefaultPriority, src.Priority())
	s.True(src.Enabled())

	src.SetEnabled(false)
	s.False(src.Enabled())
}

func (s *ClearVINSourceSuite) TestCanHandleVINsOnly() {
	src := clearvin.New("http://unused", testEmail, testPassword)

	s.True(src.CanHandle(vehicle.MustParseIdentifier("1HGCM82633A004352")))
	s.False(src.CanHandle(vehicle.MustParseIdentifier("JZA80-1004956")))
}

func (s *ClearVINSourceSuite) TestDecodeLogsInAndMapsReport() {
	api := newFakeReportAPI(s.T())
	server := api.server()
	defer server.Close()

	src := s.newSource(server.URL)
	res := src.Decode(context.Background(), s.id)

	s.Require().True(res.Success, "reason: %s", res.Err)
	s.Equal(source.NameClearVIN, res.Source)

	s.Equal("HONDA", res.Data[vehicle.FieldMake])
	s.Equal("Accord", res.Data[vehicle.FieldModel])
	s.Equal(2003, res.Data[vehicle.FieldYear])
	s.Equal("EX-V6", res.Data[vehicle.FieldTrim])
	s.Equal("3.0L V6 SOHC VTEC", res.Data[vehicle.FieldEngine])
	s.Equal("United States", res.Data[vehicle.FieldCountry])

	dims, ok := res.Data[vehicle.FieldDimensions].(map[string]any)
	s.Require().True(ok)
	s.Equal(187.6, dims["length_in"])
	s.Contains(res.Data, vehicle.FieldSeating)
	s.Contains(res.Data, vehicle.FieldPricing)
	s.Contains(res.Data, vehicle.FieldMileage)

	extra, ok := res.Data[vehicle.FieldAdditionalInfo].(map[string]any)
	s.Require().True(ok)
	s.Equal("Front and side", extra["airbags"])
	_, hasBlank := extra["color"]
	s.False(hasBlank, "empty report values must not leak into additional_info")

	s.Equal(int32(1), api.logins.Load())
	s.Equal(int32(1), api.reports.Load())
}

func (s *ClearVINSourceSuite) TestTokenReusedAcrossDecodes() {
	api := newFakeReportAPI(s.T())
	server := api.server()
	defer server.Close()

	src := s.newSource(server.URL)
	s.Require().True(src.Decode(context.Background(), s.id).Success)
	s.Require().True(src.Decode(context.Background(), s.id).Success)

	s.Equal(int32(1), api.logins.Load(), "a live token must be reused")
	s.Equal(int32(2), api.reports.Load())
}

func (s *ClearVINSourceSuite) TestExpiredTokenTriggersRelogin() {
	api := newFakeReportAPI(s.T())
	// Shorter than the refresh safety margin, so the cached token is
	// already considered stale on the next decode.
	api.tokenTTL = 5 * time.Second
	server := api.server()
	defer server.Close()

	src := s.newSource(server.URL)
	s.Require().True(src.Decode(context.Background(), s.id).Success)
	s.Require().True(src.Decode(context.Background(), s.id).Success)

	s.Equal(int32(2), api.logins.Load())
}

func (s *ClearVINSourceSuite) TestUnauthorizedForcesOneRelogin() {
	api := newFakeReportAPI(s.T())
	server := api.server()
	defer server.Close()

	src := s.newSource(server.URL)
	s.Require().True(src.Decode(context.Background(), s.id).Success)

	api.revokeCurrent()
	res := src.Decode(context.Background(), s.id)

	s.Require().True(res.Success, "reason: %s", res.Err)
	s.Equal(int32(2), api.logins.Load())
	s.Equal(int32(3), api.reports.Load(), "rejected call plus retried call")
}

func (s *ClearVINSourceSuite) TestLoginFailureIsFailure() {
	api := newFakeReportAPI(s.T())
	server := api.server()
	defer server.Close()

	src := clearvin.New(server.URL, testEmail, "wrong-password",
		clearvin.WithHTTPClient(fastClient()))
	res := src.Decode(context.Background(), s.id)

	s.False(res.Success)
	s.Contains(res.Err, "login failed")
	s.Empty(res.Data)
	s.Equal(int32(0), api.reports.Load())
}

func (s *ClearVINSourceSuite) TestEmptyVehicleBlockIsFailure() {
	api := newFakeReportAPI(s.T())
	api.vehicle = map[string]any{}
	server := api.server()
	defer server.Close()

	src := s.newSource(server.URL)
	res := src.Decode(context.Background(), s.id)

	s.False(res.Success)
	s.Contains(res.Err, "no vehicle data")
}

func (s *ClearVINSourceSuite) TestBreakerOpensAndShortCircuits() {
	var reportCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"token": signedToken(s.T(), time.Now().Add(time.Hour), 1),
		})
	})
	mux.HandleFunc("GET /reports/{vin}/decode", func(w http.ResponseWriter, _ *http.Request) {
		reportCalls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	breaker := circuit.New(source.NameClearVIN, circuit.WithFailureThreshold(2))
	src := s.newSource(server.URL, clearvin.WithBreaker(breaker))

	ctx := context.Background()
	s.False(src.Decode(ctx, s.id).Success)
	s.False(src.Decode(ctx, s.id).Success)
	s.True(breaker.IsOpen())

	before := reportCalls.Load()
	res := src.Decode(ctx, s.id)
	s.False(res.Success)
	s.Contains(res.Err, "circuit open")
	s.Equal(before, reportCalls.Load(), "an open breaker must not reach the network")
}

func (s *ClearVINSourceSuite) TestBreakerRecoversAfterCooldown() {
	api := newFakeReportAPI(s.T())
	var failing atomic.Bool
	failing.Store(true)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", api.handleLogin)
	mux.HandleFunc("GET /reports/{vin}/decode", func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		api.handleReport(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	breaker := circuit.New(source.NameClearVIN,
		circuit.WithFailureThreshold(2),
		circuit.WithSuccessThreshold(1),
		circuit.WithCooldown(time.Millisecond),
	)
	src := s.newSource(server.URL, clearvin.WithBreaker(breaker))

	ctx := context.Background()
	s.False(src.Decode(ctx, s.id).Success)
	s.False(src.Decode(ctx, s.id).Success)
	s.True(breaker.IsOpen())

	failing.Store(false)
	time.Sleep(5 * time.Millisecond)

	res := src.Decode(ctx, s.id)
	s.True(res.Success, "cooldown trial must reach the recovered upstream: %s", res.Err)
	s.False(breaker.IsOpen(), "a successful trial closes the circuit")
}
