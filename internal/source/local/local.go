// Package local implements the reference-table decoding source. It is the
// guaranteed fallback: always enabled, handles both identifier kinds and
// never fails.
package local

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Shekel-Africa/vin-package-sub000/internal/cache"
	"github.com/Shekel-Africa/vin-package-sub000/internal/refdata"
	"github.com/Shekel-Africa/vin-package-sub000/internal/source"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/vehicle"
)

// DefaultPriority ranks local below the remote sources; it is consulted
// last and trusted least during merges.
const DefaultPriority = 30

// Source decodes identifiers from built-in reference tables plus the
// additive learned-WMI overlay.
type Source struct {
	tables   *refdata.Tables
	learned  *refdata.Learned
	cache    cache.Cache
	ttl      time.Duration
	priority int
	logger   *slog.Logger
}

// Option configures the local source.
type Option func(*Source)

// WithCache gives the source a result cache plus write-through persistence
// for learned WMIs.
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

// New builds the local source over the process-wide reference tables.
func New(opts ...Option) *Source {
	tables := refdata.Load()
	s := &Source{
		tables:   tables,
		learned:  refdata.NewLearned(tables),
		priority: DefaultPriority,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Source) Name() string  { return source.NameLocal }
func (s *Source) Priority() int { return s.priority }

// Enabled always reports true.
func (s *Source) Enabled() bool { return true }

// SetEnabled is ignored; the local source is the guaranteed fallback and
// cannot be disabled.
func (s *Source) SetEnabled(bool) {}

// CanHandle accepts every well-formed identifier.
func (s *Source) CanHandle(id vehicle.Identifier) bool {
	return !id.IsZero()
}

// Decode resolves whatever the reference tables know about the identifier.
// It never fails; an unknown identifier yields a sparse record.
func (s *Source) Decode(ctx context.Context, id vehicle.Identifier) source.Result {
	start := time.Now()

	key := cache.LocalKey(id)
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var data map[string]any
			if err := json.Unmarshal([]byte(raw), &data); err == nil {
				return source.NewSuccess(source.NameLocal, data, source.Metadata{
					ExecutionTime: time.Since(start),
					CacheHit:      true,
					Timestamp:     time.Now(),
				})
			}
			// Corrupt entry; drop it and recompute.
			s.cache.Delete(ctx, key)
		}
	}

	var data map[string]any
	switch id.Kind() {
	case vehicle.KindChassisNumber:
		data = s.decodeChassis(id)
	default:
		data = s.decodeVIN(ctx, id)
	}

	if s.cache != nil {
		if payload, err := json.Marshal(data); err == nil {
			s.cache.Set(ctx, key, string(payload), s.ttl)
		}
	}

	return source.NewSuccess(source.NameLocal, data, source.Metadata{
		ExecutionTime: time.Since(start),
		Timestamp:     time.Now(),
	})
}

func (s *Source) decodeVIN(ctx context.Context, id vehicle.Identifier) map[string]any {
	raw := id.String()
	wmi := id.WMI()
	data := map[string]any{}

	if name, ok := s.lookupWMI(ctx, wmi); ok {
		data[vehicle.FieldMake] = name
		data[vehicle.FieldManufacturer] = name
	}
	if country, ok := s.tables.CountryForFirstChar(raw[0]); ok {
		data[vehicle.FieldCountry] = country
	}
	if year, ok := refdata.YearForCode(id.YearCode(), raw[6]); ok {
		data[vehicle.FieldYear] = year
	}

	data[vehicle.FieldAdditionalInfo] = map[string]any{
		"wmi": wmi,
		"vds": id.VDS(),
		"vis": id.VIS(),
	}
	return data
}

func (s *Source) decodeChassis(id vehicle.Identifier) map[string]any {
	data := map[string]any{}

	parts, ok := vehicle.ParseChassis(id.String())
	if !ok {
		// Cannot happen for a parsed identifier; keep the record sparse.
		return data
	}

	if jdm, ok := s.tables.JDMModelForCode(parts.ModelCode); ok {
		data[vehicle.FieldMake] = jdm.Make
		data[vehicle.FieldModel] = jdm.Model
		data[vehicle.FieldManufacturer] = jdm.Make
	}
	data[vehicle.FieldCountry] = "Japan"

	// Chassis numbers never encode a model year; the field stays absent.
	data[vehicle.FieldAdditionalInfo] = map[string]any{
		"model_code":    parts.ModelCode,
		"serial_number": parts.SerialNumber,
	}
	return data
}

// lookupWMI consults built-ins, the in-memory overlay, then the persisted
// overlay; cache hits are hydrated into memory for next time.
func (s *Source) lookupWMI(ctx context.Context, wmi string) (string, bool) {
	if name, ok := s.learned.Lookup(wmi); ok {
		return name, true
	}
	if s.cache == nil {
		return "", false
	}
	name, ok := s.cache.Get(ctx, cache.LearnedWMIKey(wmi))
	if !ok || name == "" {
		return "", false
	}
	s.learned.Learn(wmi, name)
	return name, true
}

// LearnWMI records a manufacturer mapping discovered by a remote source.
// One-way and additive: built-in entries are never overwritten. Reports
// whether the overlay changed.
func (s *Source) LearnWMI(ctx context.Context, wmi, manufacturer string) bool {
	if !s.learned.Learn(wmi, manufacturer) {
		return false
	}
	if s.cache != nil {
		s.cache.Set(ctx, cache.LearnedWMIKey(wmi), manufacturer, 0)
	}
	s.logger.InfoContext(ctx, "learned manufacturer for wmi",
		"wmi", wmi,
		"manufacturer", manufacturer,
	)
	return true
}

// KnownWMI reports whether the WMI already resolves through built-ins or
// the overlay.
func (s *Source) KnownWMI(ctx context.Context, wmi string) bool {
	_, ok := s.lookupWMI(ctx, wmi)
	return ok
}
