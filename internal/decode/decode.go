// Package decode is the engine façade. It validates raw identifier input,
// consults the merged-record cache, runs decoding sources, reconciles their
// results and writes the outcome back, emitting audit events along the way.
//
// Two operating modes exist, chosen at construction time. Extensible mode
// runs a source chain and a configurable merger. Legacy mode pairs the
// built-in local decoder with exactly one remote decoder and falls back to
// the local baseline when the remote fails.
package decode

//go:generate mockgen -source=decode.go -destination=mocks/mocks.go -package=mocks LocalSource,AuditPublisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shekel-Africa/vin-package-sub000/internal/cache"
	"github.com/Shekel-Africa/vin-package-sub000/internal/merge"
	"github.com/Shekel-Africa/vin-package-sub000/internal/source"
	dErrors "github.com/Shekel-Africa/vin-package-sub000/pkg/domain-errors"
	audit "github.com/Shekel-Africa/vin-package-sub000/pkg/platform/audit"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/requestcontext"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/vehicle"
)

// DefaultCacheTTL is how long merged records stay cached unless overridden.
const DefaultCacheTTL = 720 * time.Hour

// Provenance annotations recorded in legacy-mode cache metadata.
const (
	DecodedByRemote = "remote"
	DecodedByLocal  = "local"
)

type mode string

const (
	modeExtensible mode = "extensible"
	modeLegacy     mode = "legacy"
)

// LocalSource is the reference-table decoder together with its additive WMI
// knowledge. Legacy mode requires one; extensible mode uses it for WMI
// learning and local-only decodes when supplied.
type LocalSource interface {
	source.Source

	// KnownWMI reports whether the WMI already resolves to a manufacturer.
	KnownWMI(ctx context.Context, wmi string) bool

	// LearnWMI records a manufacturer mapping discovered remotely. Additive
	// only; reports whether the overlay changed.
	LearnWMI(ctx context.Context, wmi, manufacturer string) bool
}

// AuditPublisher receives decode audit events. Emission is fire-and-forget;
// a failing publisher never fails a decode.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Options adjust a single Decode call.
type Options struct {
	// SkipCache bypasses the cache read. The fresh result is still written
	// back.
	SkipCache bool

	// ForceRefresh re-runs the decode even when a cached record exists. In
	// legacy mode a cached record that came from a successful remote decode
	// is still served; only locally decoded records are refreshed.
	ForceRefresh bool
}

// Orchestrator ties a cache, decoding sources and a merger into one decode
// entry point. Safe for concurrent use.
type Orchestrator struct {
	mode mode

	// Extensible mode.
	chain    *source.Chain
	strategy source.Strategy
	merger   *merge.Merger

	// Legacy mode. The legacy merger is fixed to best-effort so remote
	// fields win over the local baseline.
	local        LocalSource
	remote       source.Source
	legacyMerger *merge.Merger
	fallback     atomic.Bool

	store cache.Cache
	ttl   time.Duration

	logger    *slog.Logger
	tracer    trace.Tracer
	publisher AuditPublisher
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStrategy sets the chain execution strategy for extensible mode.
func WithStrategy(s source.Strategy) Option {
	return func(o *Orchestrator) {
		if s != "" {
			o.strategy = s
		}
	}
}

// WithCacheTTL overrides how long merged records are cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *Orchestrator) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAuditPublisher wires audit event emission.
func WithAuditPublisher(p AuditPublisher) Option {
	return func(o *Orchestrator) {
		o.publisher = p
	}
}

// WithLocalSource gives an extensible orchestrator a handle on the local
// decoder for WMI learning and DecodeLocal. The same instance is normally
// also added to the chain.
func WithLocalSource(local LocalSource) Option {
	return func(o *Orchestrator) {
		o.local = local
	}
}

// New builds an extensible-mode orchestrator over a source chain and a
// merger.
func New(chain *source.Chain, merger *merge.Merger, store cache.Cache, opts ...Option) (*Orchestrator, error) {
	if chain == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "source chain is required")
	}
	if merger == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "merger is required")
	}
	if store == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "cache is required")
	}

	o := &Orchestrator{
		mode:     modeExtensible,
		chain:    chain,
		strategy: source.StrategyFailFast,
		merger:   merger,
		store:    store,
		ttl:      DefaultCacheTTL,
		logger:   slog.Default(),
		tracer:   otel.Tracer("vindec/decode"),
	}
	o.fallback.Store(true)
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o, nil
}

// NewLegacy builds a legacy-mode orchestrator over the local decoder and
// one remote decoder. Local fallback starts enabled.
func NewLegacy(local LocalSource, remote source.Source, store cache.Cache, opts ...Option) (*Orchestrator, error) {
	if local == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "local source is required")
	}
	if remote == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "remote source is required")
	}
	if store == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "cache is required")
	}

	o := &Orchestrator{
		mode:         modeLegacy,
		local:        local,
		remote:       remote,
		legacyMerger: merge.New(merge.WithStrategy(merge.StrategyBestEffort)),
		store:        store,
		ttl:          DefaultCacheTTL,
		logger:       slog.Default(),
		tracer:       otel.Tracer("vindec/decode"),
	}
	o.fallback.Store(true)
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o, nil
}

// SetLocalFallback toggles the legacy-mode fallback to the local baseline.
// With fallback off, a remote failure surfaces as a decode error.
func (o *Orchestrator) SetLocalFallback(enabled bool) {
	o.fallback.Store(enabled)
}

// Decode validates and decodes one identifier. Malformed input is rejected
// before any source runs. In extensible mode the only other error is total
// decode failure; legacy mode instead falls back to the local baseline
// while fallback is enabled.
func (o *Orchestrator) Decode(ctx context.Context, raw string, opts Options) (merge.Record, error) {
	id, err := vehicle.ParseIdentifier(raw)
	if err != nil {
		return nil, err
	}

	ctx, span := o.tracer.Start(ctx, "decode.decode")
	defer span.End()
	span.SetAttributes(
		attribute.String("decode.mode", string(o.mode)),
		attribute.String("identifier.kind", string(id.Kind())),
	)

	ctx, requestID := ensureRequestID(ctx)
	start := time.Now()

	log := o.logger
	if caller := requestcontext.Caller(ctx); caller != "" {
		log = log.With("caller", caller)
	}
	log.InfoContext(ctx, "decode requested",
		"identifier", id.Masked(),
		"kind", id.Kind(),
		"mode", o.mode,
		"request_id", requestID,
	)
	o.audit(ctx, audit.ActionDecodeRequested, audit.Event{
		Identifier: id.Masked(),
		RequestID:  requestID,
	})

	var rec merge.Record
	if o.mode == modeLegacy {
		rec, err = o.decodeLegacy(ctx, id, requestID, opts)
	} else {
		rec, err = o.decodeExtensible(ctx, id, requestID, opts)
	}

	elapsed := time.Since(start)
	if err != nil {
		observeDecode(string(o.mode), "failure", elapsed)
		log.WarnContext(ctx, "decode failed",
			"identifier", id.Masked(),
			"reason", err.Error(),
			"request_id", requestID,
		)
		o.audit(ctx, audit.ActionDecodeFailed, audit.Event{
			Identifier: id.Masked(),
			RequestID:  requestID,
			Reason:     err.Error(),
		})
		return nil, err
	}

	observeDecode(string(o.mode), "success", elapsed)
	log.InfoContext(ctx, "decode completed",
		"identifier", id.Masked(),
		"duration_ms", elapsed.Milliseconds(),
		"request_id", requestID,
	)
	o.audit(ctx, audit.ActionDecodeCompleted, audit.Event{
		Identifier: id.Masked(),
		RequestID:  requestID,
	})
	return rec, nil
}

func (o *Orchestrator) decodeExtensible(ctx context.Context, id vehicle.Identifier, requestID string, opts Options) (merge.Record, error) {
	key := cache.MergedKey(id)

	if !opts.SkipCache && !opts.ForceRefresh {
		if rec, ok := o.cachedRecord(ctx, key); ok {
			observeCacheLookup("hit")
			o.logger.DebugContext(ctx, "decode served from cache",
				"identifier", id.Masked(),
				"request_id", requestID,
			)
			o.audit(ctx, audit.ActionDecodeCacheHit, audit.Event{
				Identifier: id.Masked(),
				RequestID:  requestID,
			})
			return rec, nil
		}
		observeCacheLookup("miss")
	}

	res := o.chain.Execute(ctx, id, o.strategy)
	o.auditLookups(ctx, id, requestID, res.Successes, res.Failures)

	if !res.HasSuccess() {
		return nil, dErrors.Newf(dErrors.CodeUnavailable, "no source could decode %s", id.Masked())
	}

	rec := o.merger.Merge(ctx, res.Successes)
	o.learnFromResults(ctx, id, requestID, res.Successes)
	o.storeRecord(ctx, key, rec)
	return rec, nil
}

func (o *Orchestrator) decodeLegacy(ctx context.Context, id vehicle.Identifier, requestID string, opts Options) (merge.Record, error) {
	key := cache.MergedKey(id)

	if !opts.SkipCache {
		rec, ok := o.cachedRecord(ctx, key)
		switch {
		case ok && (decodedBy(rec) != DecodedByLocal || !opts.ForceRefresh):
			// Remote-decoded records are authoritative; locally decoded
			// ones are served only until a refresh is forced.
			observeCacheLookup("hit")
			o.logger.DebugContext(ctx, "decode served from cache",
				"identifier", id.Masked(),
				"request_id", requestID,
			)
			o.audit(ctx, audit.ActionDecodeCacheHit, audit.Event{
				Identifier: id.Masked(),
				RequestID:  requestID,
			})
			return rec, nil
		case !ok:
			observeCacheLookup("miss")
		}
	}

	// The local baseline is cheap and never fails; compute it up front so
	// a remote failure always has something to fall back to.
	localRes := o.local.Decode(ctx, id)

	remoteRes, attempted := o.tryRemote(ctx, id)
	if attempted && remoteRes.Success {
		o.auditLookups(ctx, id, requestID, []source.Result{remoteRes}, nil)

		rec := o.legacyMerger.Merge(ctx, []source.Result{remoteRes, localRes})
		annotate(rec, DecodedByRemote, "")
		o.learnFromResults(ctx, id, requestID, []source.Result{remoteRes})
		o.storeRecord(ctx, key, rec)
		return rec, nil
	}

	reason := "remote source cannot decode this identifier kind"
	if attempted {
		reason = remoteRes.Err
		o.auditLookups(ctx, id, requestID, nil, []source.Result{remoteRes})
	}

	if !o.fallback.Load() {
		return nil, dErrors.Newf(dErrors.CodeUnavailable, "remote decode failed: %s", reason)
	}

	o.logger.WarnContext(ctx, "falling back to local decode",
		"identifier", id.Masked(),
		"reason", reason,
		"request_id", requestID,
	)
	o.audit(ctx, audit.ActionProviderFallback, audit.Event{
		Identifier: id.Masked(),
		Source:     o.remote.Name(),
		RequestID:  requestID,
		Reason:     reason,
	})

	rec := o.legacyMerger.Merge(ctx, []source.Result{localRes})
	annotate(rec, DecodedByLocal, reason)
	o.storeRecord(ctx, key, rec)
	return rec, nil
}

// DecodeLocal decodes through the reference tables only, bypassing every
// remote source. The merged cache is left untouched so a later full decode
// still consults the remotes.
func (o *Orchestrator) DecodeLocal(ctx context.Context, raw string) (merge.Record, error) {
	if o.local == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "no local source configured")
	}

	id, err := vehicle.ParseIdentifier(raw)
	if err != nil {
		return nil, err
	}

	ctx, span := o.tracer.Start(ctx, "decode.decode_local")
	defer span.End()

	ctx, requestID := ensureRequestID(ctx)
	start := time.Now()

	o.audit(ctx, audit.ActionDecodeRequested, audit.Event{
		Identifier: id.Masked(),
		RequestID:  requestID,
	})

	res := o.local.Decode(ctx, id)
	rec := o.recordMerger().Merge(ctx, []source.Result{res})
	annotate(rec, DecodedByLocal, "")

	elapsed := time.Since(start)
	observeDecode("local", "success", elapsed)
	o.logger.InfoContext(ctx, "decode completed",
		"identifier", id.Masked(),
		"duration_ms", elapsed.Milliseconds(),
		"request_id", requestID,
	)
	o.audit(ctx, audit.ActionDecodeCompleted, audit.Event{
		Identifier: id.Masked(),
		RequestID:  requestID,
	})
	return rec, nil
}

// InvalidateCache drops every cached artifact for one identifier: both
// per-source entries and the merged record. Reports how many entries were
// actually removed.
func (o *Orchestrator) InvalidateCache(ctx context.Context, raw string) (int, error) {
	id, err := vehicle.ParseIdentifier(raw)
	if err != nil {
		return 0, err
	}

	ctx, span := o.tracer.Start(ctx, "decode.invalidate_cache")
	defer span.End()

	removed := 0
	for _, key := range []string{cache.LocalKey(id), cache.NHTSAKey(id), cache.MergedKey(id)} {
		if o.store.Delete(ctx, key) {
			removed++
		}
	}

	o.logger.InfoContext(ctx, "cache invalidated",
		"identifier", id.Masked(),
		"removed", removed,
	)
	o.audit(ctx, audit.ActionCacheInvalidated, audit.Event{
		Identifier: id.Masked(),
	})
	return removed, nil
}

// tryRemote consults the legacy remote decoder when it is enabled and
// applicable to the identifier kind.
func (o *Orchestrator) tryRemote(ctx context.Context, id vehicle.Identifier) (source.Result, bool) {
	if !o.remote.Enabled() || !o.remote.CanHandle(id) {
		return source.Result{}, false
	}
	return o.remote.Decode(ctx, id), true
}

// learnFromResults feeds a manufacturer name reported by a remote source
// back into the local reference tables when the WMI is not yet known.
func (o *Orchestrator) learnFromResults(ctx context.Context, id vehicle.Identifier, requestID string, successes []source.Result) {
	if o.local == nil || id.Kind() != vehicle.KindVIN {
		return
	}
	wmi := id.WMI()
	if wmi == "" || o.local.KnownWMI(ctx, wmi) {
		return
	}

	for _, res := range successes {
		if res.Source == source.NameLocal {
			continue
		}
		name := manufacturerName(res.Data)
		if name == "" {
			continue
		}
		if o.local.LearnWMI(ctx, wmi, name) {
			o.audit(ctx, audit.ActionWMILearned, audit.Event{
				Identifier: id.Masked(),
				Source:     res.Source,
				RequestID:  requestID,
			})
		}
		return
	}
}

// auditLookups emits provider events for remote source outcomes. Local
// decodes are not provider lookups and stay out of the provider trail.
func (o *Orchestrator) auditLookups(ctx context.Context, id vehicle.Identifier, requestID string, successes, failures []source.Result) {
	for _, res := range successes {
		if res.Source == source.NameLocal {
			continue
		}
		o.audit(ctx, audit.ActionLookupSucceeded, audit.Event{
			Identifier: id.Masked(),
			Source:     res.Source,
			RequestID:  requestID,
		})
	}
	for _, res := range failures {
		if res.Source == source.NameLocal {
			continue
		}
		o.audit(ctx, audit.ActionLookupFailed, audit.Event{
			Identifier: id.Masked(),
			Source:     res.Source,
			RequestID:  requestID,
			Reason:     res.Err,
		})
	}
}

func (o *Orchestrator) cachedRecord(ctx context.Context, key string) (merge.Record, bool) {
	raw, ok := o.store.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var rec merge.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		// Corrupt entry; drop it and decode fresh.
		o.store.Delete(ctx, key)
		return nil, false
	}
	return rec, true
}

func (o *Orchestrator) storeRecord(ctx context.Context, key string, rec merge.Record) {
	payload, err := json.Marshal(rec)
	if err != nil {
		o.logger.WarnContext(ctx, "record not cacheable", "error", err)
		return
	}
	o.store.Set(ctx, key, string(payload), o.ttl)
}

func (o *Orchestrator) recordMerger() *merge.Merger {
	if o.mode == modeLegacy {
		return o.legacyMerger
	}
	return o.merger
}

func (o *Orchestrator) audit(ctx context.Context, action audit.Action, event audit.Event) {
	if o.publisher == nil {
		return
	}
	event.Action = string(action)
	_ = o.publisher.Emit(ctx, event)
}

// ensureRequestID honors a request ID already set by the caller and mints
// one otherwise, so every log line and audit event of a decode correlates.
func ensureRequestID(ctx context.Context) (context.Context, string) {
	if id := requestcontext.RequestID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return requestcontext.WithRequestID(ctx, id), id
}

// annotate stamps legacy provenance onto a record's cache metadata block.
func annotate(rec merge.Record, decodedBy, failureReason string) {
	md, _ := rec[merge.FieldCacheMetadata].(merge.CacheMetadata)
	md.DecodedBy = decodedBy
	md.FailureReason = failureReason
	rec[merge.FieldCacheMetadata] = md
}

// decodedBy reads the provenance annotation from a record, whether fresh
// from the merger or round-tripped through the cache as JSON.
func decodedBy(rec merge.Record) string {
	switch md := rec[merge.FieldCacheMetadata].(type) {
	case merge.CacheMetadata:
		return md.DecodedBy
	case map[string]any:
		s, _ := md["decoded_by"].(string)
		return s
	default:
		return ""
	}
}

// manufacturerName extracts the manufacturer a source reported, falling
// back to the make.
func manufacturerName(data map[string]any) string {
	for _, field := range []string{vehicle.FieldManufacturer, vehicle.FieldMake} {
		if s, ok := data[field].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
