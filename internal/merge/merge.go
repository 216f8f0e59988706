// Package merge reconciles partial, conflicting per-source decode results
// into one authoritative vehicle record.
package merge

import (
	"context"
	"maps"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shekel-Africa/vin-package-sub000/internal/source"
	dErrors "github.com/Shekel-Africa/vin-package-sub000/pkg/domain-errors"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/vehicle"
)

// Strategy selects how conflicting field values are reconciled.
type Strategy string

const (
	// StrategyPriority resolves each field through a per-field source
	// priority list.
	StrategyPriority Strategy = "priority"
	// StrategyBestEffort keeps the first non-empty value per field in
	// supplied order.
	StrategyBestEffort Strategy = "best_effort"
	// StrategyComplete bases the record on the richest single source and
	// fills gaps from the rest.
	StrategyComplete Strategy = "complete"
)

// ParseStrategy validates a strategy name from config or CLI flags.
func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(raw) {
	case StrategyPriority, StrategyBestEffort, StrategyComplete:
		return Strategy(raw), nil
	default:
		return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown merge strategy %q", raw)
	}
}

// FieldCacheMetadata is the record key holding the merge provenance block.
const FieldCacheMetadata = "cache_metadata"

// Record is a reconciled vehicle record: canonical attribute fields plus a
// cache_metadata provenance block.
type Record map[string]any

// CacheMetadata describes which sources contributed to a record and how
// long they took. Legacy-mode decodes additionally mark how the record was
// produced.
type CacheMetadata struct {
	Sources            []string                   `json:"sources"`
	TotalExecutionTime time.Duration              `json:"total_execution_time"`
	SourceMetadata     map[string]source.Metadata `json:"source_metadata"`
	DecodedBy          string                     `json:"decoded_by,omitempty"`
	FailureReason      string                     `json:"failure_reason,omitempty"`
}

// DefaultFieldPriorities returns the default field-to-source priority
// table: the public decoder leads for most attributes, the commercial
// report for trim and engine, and the commercial report exclusively for
// its special blocks.
func DefaultFieldPriorities() map[string][]string {
	general := []string{source.NameNHTSA, source.NameClearVIN, source.NameLocal}
	commercial := []string{source.NameClearVIN, source.NameNHTSA, source.NameLocal}

	table := make(map[string][]string, len(vehicle.StandardFields)+len(vehicle.SpecialFields)+1)
	for _, field := range vehicle.StandardFields {
		table[field] = general
	}
	table[vehicle.FieldTrim] = commercial
	table[vehicle.FieldEngine] = commercial
	table[vehicle.FieldValidation] = []string{source.NameNHTSA}
	for _, field := range vehicle.SpecialFields {
		table[field] = []string{source.NameClearVIN}
	}
	return table
}

// Merger reconciles successful decode results. Safe for concurrent use
// once built.
type Merger struct {
	strategy   Strategy
	newest     bool
	priorities map[string][]string
	tracer     trace.Tracer
}

// Option configures a Merger.
type Option func(*Merger)

// WithStrategy selects the merge strategy.
func WithStrategy(s Strategy) Option {
	return func(m *Merger) {
		if s != "" {
			m.strategy = s
		}
	}
}

// WithNewest switches the priority strategy's field resolution from the
// static table to greatest-source-timestamp.
func WithNewest(enabled bool) Option {
	return func(m *Merger) {
		m.newest = enabled
	}
}

// WithFieldPriorities overlays per-field source priority lists onto the
// default table.
func WithFieldPriorities(overrides map[string][]string) Option {
	return func(m *Merger) {
		for field, sources := range overrides {
			m.priorities[field] = sources
		}
	}
}

// New builds a Merger. The priority strategy with the default table is the
// default.
func New(opts ...Option) *Merger {
	m := &Merger{
		strategy:   StrategyPriority,
		priorities: DefaultFieldPriorities(),
		tracer:     otel.Tracer("vindec/merge"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Strategy reports the configured strategy.
func (m *Merger) Strategy() Strategy { return m.strategy }

// Merge reconciles successful results into one record. Failed results in
// the input are ignored. An empty input yields an empty record; a single
// result is passed through with provenance attached.
func (m *Merger) Merge(ctx context.Context, results []source.Result) Record {
	_, span := m.tracer.Start(ctx, "merge.merge")
	defer span.End()
	span.SetAttributes(attribute.String("merge.strategy", string(m.strategy)))

	successes := make([]source.Result, 0, len(results))
	for _, res := range results {
		if res.Success {
			successes = append(successes, res)
		}
	}
	span.SetAttributes(attribute.Int("merge.sources", len(successes)))

	if len(successes) == 0 {
		return Record{}
	}

	var rec Record
	switch {
	case len(successes) == 1:
		rec = Record(maps.Clone(successes[0].Data))
	case m.strategy == StrategyBestEffort:
		rec = m.mergeBestEffort(successes)
	case m.strategy == StrategyComplete:
		rec = m.mergeComplete(successes)
	default:
		rec = m.mergePriority(successes)
	}

	rec[FieldCacheMetadata] = buildCacheMetadata(successes)
	observeMerge(string(m.strategy), len(successes))
	return rec
}

func (m *Merger) mergePriority(results []source.Result) Record {
	rec := Record{}
	byName := indexByName(results)

	for _, field := range vehicle.StandardFields {
		if m.newest {
			if v, ok := newestValue(field, results); ok {
				rec[field] = v
			}
			continue
		}
		if v, ok := m.resolve(field, byName, results); ok {
			rec[field] = v
		}
	}

	// Special blocks come from their designated source or not at all;
	// there is no cross-source fallback for them.
	for _, field := range vehicle.SpecialFields {
		for _, name := range m.priorities[field] {
			if res, ok := byName[name]; ok {
				if v, present := nonEmpty(res.Data, field); present {
					rec[field] = v
					break
				}
			}
		}
	}

	if v, ok := m.resolve(vehicle.FieldValidation, byName, results); ok {
		rec[vehicle.FieldValidation] = v
	} else {
		rec[vehicle.FieldValidation] = map[string]any{
			"error_code": nil,
			"error_text": nil,
			"is_valid":   true,
		}
	}

	if info := unionAdditionalInfo(results); len(info) > 0 {
		rec[vehicle.FieldAdditionalInfo] = info
	}
	return rec
}

// resolve walks the field's priority list, then falls back to the first
// non-empty value in supplied order.
func (m *Merger) resolve(field string, byName map[string]source.Result, ordered []source.Result) (any, bool) {
	for _, name := range m.priorities[field] {
		if res, ok := byName[name]; ok {
			if v, present := nonEmpty(res.Data, field); present {
				return v, true
			}
		}
	}
	for _, res := range ordered {
		if v, present := nonEmpty(res.Data, field); present {
			return v, true
		}
	}
	return nil, false
}

func (m *Merger) mergeBestEffort(results []source.Result) Record {
	rec := Record{}
	for _, res := range results {
		for key, value := range res.Data {
			if vehicle.IsEmpty(value) {
				continue
			}
			if _, taken := rec[key]; taken {
				continue
			}
			rec[key] = value
		}
	}
	return rec
}

func (m *Merger) mergeComplete(results []source.Result) Record {
	baseIdx, bestCount := 0, -1
	for i, res := range results {
		if c := countNonEmpty(res.Data); c > bestCount {
			baseIdx, bestCount = i, c
		}
	}

	rec := Record{}
	for key, value := range results[baseIdx].Data {
		if !vehicle.IsEmpty(value) {
			rec[key] = value
		}
	}
	for i, res := range results {
		if i == baseIdx {
			continue
		}
		for key, value := range res.Data {
			if vehicle.IsEmpty(value) {
				continue
			}
			if _, taken := rec[key]; taken {
				continue
			}
			rec[key] = value
		}
	}
	return rec
}

// newestValue picks the non-empty candidate with the greatest source
// timestamp; earlier-supplied sources win ties.
func newestValue(field string, results []source.Result) (any, bool) {
	type candidate struct {
		value any
		ts    time.Time
	}
	var candidates []candidate
	for _, res := range results {
		if v, ok := nonEmpty(res.Data, field); ok {
			candidates = append(candidates, candidate{v, res.Metadata.Timestamp})
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ts.After(candidates[j].ts)
	})
	return candidates[0].value, true
}

func unionAdditionalInfo(results []source.Result) map[string]any {
	union := map[string]any{}
	for _, res := range results {
		block, ok := res.Data[vehicle.FieldAdditionalInfo].(map[string]any)
		if !ok {
			continue
		}
		for key, value := range block {
			union[key] = value
		}
	}
	return union
}

func buildCacheMetadata(results []source.Result) CacheMetadata {
	md := CacheMetadata{
		Sources:        make([]string, 0, len(results)),
		SourceMetadata: make(map[string]source.Metadata, len(results)),
	}
	for _, res := range results {
		md.Sources = append(md.Sources, res.Source)
		md.TotalExecutionTime += res.Metadata.ExecutionTime
		md.SourceMetadata[res.Source] = res.Metadata
	}
	return md
}

func indexByName(results []source.Result) map[string]source.Result {
	byName := make(map[string]source.Result, len(results))
	for _, res := range results {
		if _, ok := byName[res.Source]; !ok {
			byName[res.Source] = res
		}
	}
	return byName
}

func nonEmpty(data map[string]any, field string) (any, bool) {
	v, ok := data[field]
	if !ok || vehicle.IsEmpty(v) {
		return nil, false
	}
	return v, true
}

func countNonEmpty(data map[string]any) int {
	n := 0
	for _, v := range data {
		if !vehicle.IsEmpty(v) {
			n++
		}
	}
	return n
}
