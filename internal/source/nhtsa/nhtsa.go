// Package nhtsa implements the vPIC decoding source backed by the public
// NHTSA vehicle API.
package nhtsa

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shekel-Africa/vin-package-sub000/internal/cache"
	"github.com/Shekel-Africa/vin-package-sub000/internal/source"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/platform/circuit"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/platform/httpclient"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/vehicle"
)

// DefaultPriority ranks the public decoder first: free, authoritative for
// US-market VINs.
const DefaultPriority = 10

// envelope is the vPIC response shape for DecodeVinValues.
type envelope struct {
	Count   int                 `json:"Count"`
	Message string              `json:"Message"`
	Results []map[string]string `json:"Results"`
}

// Source decodes VINs through the vPIC flat-format endpoint.
type Source struct {
	baseURL  string
	client   *httpclient.Client
	breaker  *circuit.Breaker
	cache    cache.Cache
	ttl      time.Duration
	priority int
	enabled  atomic.Bool
	logger   *slog.Logger
	tracer   trace.Tracer
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

// WithCache adds a per-source result cache.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Source) {
		s.cache = c
		s.ttl = ttl
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

// New builds the vPIC source against the given API base URL.
func New(baseURL string, opts ...Option) *Source {
	s := &Source{
		baseURL:  baseURL,
		client:   httpclient.New(10 * time.Second),
		breaker:  circuit.New(source.NameNHTSA),
		priority: DefaultPriority,
		logger:   slog.Default(),
		tracer:   otel.Tracer("vindec/source/nhtsa"),
	}
	s.enabled.Store(true)
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Source) Name() string      { return source.NameNHTSA }
func (s *Source) Priority() int     { return s.priority }
func (s *Source) Enabled() bool     { return s.enabled.Load() }
func (s *Source) SetEnabled(v bool) { s.enabled.Store(v) }

// CanHandle accepts VINs only; vPIC knows nothing about chassis numbers.
func (s *Source) CanHandle(id vehicle.Identifier) bool {
	return id.Kind() == vehicle.KindVIN
}

// Decode queries vPIC for one VIN. Network, status and shape failures all
// come back as failed Results.
func (s *Source) Decode(ctx context.Context, id vehicle.Identifier) source.Result {
	ctx, span := s.tracer.Start(ctx, "nhtsa.decode")
	defer span.End()

	start := time.Now()
	key := cache.NHTSAKey(id)

	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var data map[string]any
			if err := json.Unmarshal([]byte(raw), &data); err == nil {
				span.SetAttributes(attribute.Bool("cache_hit", true))
				return source.NewSuccess(source.NameNHTSA, data, source.Metadata{
					ExecutionTime: time.Since(start),
					CacheHit:      true,
					Timestamp:     time.Now(),
				})
			}
			s.cache.Delete(ctx, key)
		}
	}

	// An open breaker still admits one trial per cooldown window so the
	// circuit can close again once vPIC recovers.
	if !s.breaker.Allow() {
		span.SetAttributes(attribute.Bool("breaker_open", true))
		return source.NewFailure(source.NameNHTSA, "circuit open for nhtsa_api", source.Metadata{
			ExecutionTime: time.Since(start),
			Timestamp:     time.Now(),
		})
	}

	endpoint := fmt.Sprintf("%s/vehicles/DecodeVinValues/%s?format=json",
		s.baseURL, url.PathEscape(id.String()))

	var env envelope
	status, attempts, err := s.client.GetJSON(ctx, endpoint, nil, &env)
	md := source.Metadata{
		ExecutionTime: time.Since(start),
		Attempts:      attempts,
		Timestamp:     time.Now(),
	}

	if err != nil {
		s.recordFailure(ctx)
		return source.NewFailure(source.NameNHTSA,
			fmt.Sprintf("vpic request failed (status %d): %v", status, err), md)
	}
	if len(env.Results) == 0 {
		s.recordFailure(ctx)
		return source.NewFailure(source.NameNHTSA, "vpic returned no results", md)
	}

	s.recordSuccess(ctx)

	data := mapVPICRecord(env.Results[0])
	if s.cache != nil {
		if payload, marshalErr := json.Marshal(data); marshalErr == nil {
			s.cache.Set(ctx, key, string(payload), s.ttl)
		}
	}

	md.ExecutionTime = time.Since(start)
	return source.NewSuccess(source.NameNHTSA, data, md)
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
