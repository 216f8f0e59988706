// Package clearvin implements the commercial report provider source. It is
// the only source for dimensions, seating, pricing and mileage, and the
// preferred one for trim and engine details.
package clearvin

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shekel-Africa/vin-package-sub000/internal/source"
	dErrors "github.com/Shekel-Africa/vin-package-sub000/pkg/domain-errors"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/platform/circuit"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/platform/httpclient"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/vehicle"
)

// DefaultPriority slots the paid provider between the free public decoder
// and the offline tables.
const DefaultPriority = 20

// Access tokens are refreshed this long before their exp claim so an
// in-flight report request never rides an about-to-expire token.
const tokenSafetyMargin = 30 * time.Second

// Lifetime assumed for tokens that carry no exp claim.
const fallbackTokenLifetime = 15 * time.Minute

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type reportEnvelope struct {
	Status string `json:"status"`
	Report struct {
		Vehicle map[string]any `json:"vehicle"`
		Pricing map[string]any `json:"pricing"`
		Mileage map[string]any `json:"mileage"`
	} `json:"report"`
}

// Source decodes VINs through the authenticated report API.
type Source struct {
	baseURL  string
	email    string
	password string
	client   *httpclient.Client
	breaker  *circuit.Breaker
	priority int
	enabled  atomic.Bool
	logger   *slog.Logger
	tracer   trace.Tracer

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// Option configures the source.
type Option func(*Source)

// WithHTTPClient replaces the shared outbound client.
func WithHTTPClient(c *httpclient.Client) Option {
	return func(s *Source) {
		if c != nil {
			s.client = c
		}
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Source) {
		if b != nil {
			s.breaker = b
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPriority overrides the default chain priority.
func WithPriority(p int) Option {
	return func(s *Source) {
		s.priority = p
	}
}

// New builds the report source. Credentials are exchanged for a JWT on the
// first decode, then reused until the token nears expiry.
func New(baseURL, email, password string, opts ...Option) *Source {
	s := &Source{
		baseURL:  baseURL,
		email:    email,
		password: password,
		client:   httpclient.New(15 * time.Second),
		breaker:  circuit.New(source.NameClearVIN),
		priority: DefaultPriority,
		logger:   slog.Default(),
		tracer:   otel.Tracer("vindec/source/clearvin"),
	}
	s.enabled.Store(true)
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Source) Name() string      { return source.NameClearVIN }
func (s *Source) Priority() int     { return s.priority }
func (s *Source) Enabled() bool     { return s.enabled.Load() }
func (s *Source) SetEnabled(v bool) { s.enabled.Store(v) }

// CanHandle accepts VINs only; the report API has no chassis endpoint.
func (s *Source) CanHandle(id vehicle.Identifier) bool {
	return id.Kind() == vehicle.KindVIN
}

// Decode fetches one vehicle report. A 401 on the report call forces a
// single re-login and retry; every other failure comes back as a failed
// Result.
func (s *Source) Decode(ctx context.Context, id vehicle.Identifier) source.Result {
	ctx, span := s.tracer.Start(ctx, "clearvin.decode")
	defer span.End()

	start := time.Now()

	// An open breaker still admits one trial per cooldown window so the
	// circuit can close again once the report API recovers.
	if !s.breaker.Allow() {
		span.SetAttributes(attribute.Bool("breaker_open", true))
		return source.NewFailure(source.NameClearVIN, "circuit open for clearvin", source.Metadata{
			ExecutionTime: time.Since(start),
			Timestamp:     time.Now(),
		})
	}

	attempts := 0
	token, loginAttempts, err := s.bearerToken(ctx)
	attempts += loginAttempts
	if err != nil {
		s.recordFailure(ctx)
		return source.NewFailure(source.NameClearVIN, err.Error(), source.Metadata{
			ExecutionTime: time.Since(start),
			Attempts:      attempts,
			Timestamp:     time.Now(),
		})
	}

	env, status, reportAttempts, err := s.fetchReport(ctx, id, token)
	attempts += reportAttempts
	if httpclient.IsStatus(err, http.StatusUnauthorized) {
		// Token revoked upstream before its exp claim. One forced
		// re-login, then a single retry.
		s.invalidateToken()
		span.SetAttributes(attribute.Bool("relogin", true))
		token, loginAttempts, err = s.bearerToken(ctx)
		attempts += loginAttempts
		if err == nil {
			env, status, reportAttempts, err = s.fetchReport(ctx, id, token)
			attempts += reportAttempts
		}
	}

	md := source.Metadata{
		ExecutionTime: time.Since(start),
		Attempts:      attempts,
		Timestamp:     time.Now(),
	}
	if err != nil {
		s.recordFailure(ctx)
		return source.NewFailure(source.NameClearVIN,
			fmt.Sprintf("clearvin report failed (status %d): %v", status, err), md)
	}
	if len(env.Report.Vehicle) == 0 {
		s.recordFailure(ctx)
		return source.NewFailure(source.NameClearVIN, "clearvin returned no vehicle data", md)
	}

	s.recordSuccess(ctx)
	md.ExecutionTime = time.Since(start)
	return source.NewSuccess(source.NameClearVIN, mapReport(env), md)
}

func (s *Source) fetchReport(ctx context.Context, id vehicle.Identifier, token string) (reportEnvelope, int, int, error) {
	endpoint := fmt.Sprintf("%s/reports/%s/decode", s.baseURL, url.PathEscape(id.String()))
	header := http.Header{"Authorization": []string{"Bearer " + token}}

	var env reportEnvelope
	status, attempts, err := s.client.GetJSON(ctx, endpoint, header, &env)
	return env, status, attempts, err
}

// bearerToken returns a live token, logging in when none is cached or the
// cached one is near expiry. Serialised so concurrent decodes share one
// login.
func (s *Source) bearerToken(ctx context.Context) (string, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.tokenExpiry) {
		return s.token, 0, nil
	}

	var resp loginResponse
	status, attempts, err := s.client.PostJSON(ctx, s.baseURL+"/auth/login", nil,
		loginRequest{Email: s.email, Password: s.password}, &resp)
	if err != nil {
		return "", attempts, dErrors.Wrap(err, dErrors.CodeUnavailable,
			fmt.Sprintf("clearvin login failed (status %d)", status))
	}
	if resp.Token == "" {
		return "", attempts, dErrors.New(dErrors.CodeUnavailable,
			"clearvin login returned no token")
	}

	s.token = resp.Token
	s.tokenExpiry = tokenExpiry(resp.Token)
	s.logger.InfoContext(ctx, "clearvin token refreshed", "expires_at", s.tokenExpiry)
	return s.token, attempts, nil
}

func (s *Source) invalidateToken() {
	s.mu.Lock()
	s.token = ""
	s.tokenExpiry = time.Time{}
	s.mu.Unlock()
}

// tokenExpiry reads the exp claim without verifying the signature; we
// consume these tokens, we do not issue them. Unparseable tokens and tokens
// without exp get a short assumed lifetime.
func tokenExpiry(token string) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil &&
		claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time.Add(-tokenSafetyMargin)
	}
	return time.Now().Add(fallbackTokenLifetime)
}

func (s *Source) recordFailure(ctx context.Context) {
	if _, change := s.breaker.RecordFailure(); change.Opened {
		s.logger.WarnContext(ctx, "circuit opened", "breaker", s.breaker.Name())
	}
}

func (s *Source) recordSuccess(ctx context.Context) {
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "circuit closed", "breaker", s.breaker.Name())
	}
}
