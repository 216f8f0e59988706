package source

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	dErrors "github.com/Shekel-Africa/vin-package-sub000/pkg/domain-errors"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/vehicle"
)

// Strategy selects how the chain walks its sources.
type Strategy string

const (
	// StrategyFailFast stops at the first successful source.
	StrategyFailFast Strategy = "fail_fast"
	// StrategyCollectAll consults every applicable source.
	StrategyCollectAll Strategy = "collect_all"
)

// ParseStrategy maps a configuration string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyFailFast:
		return StrategyFailFast, nil
	case StrategyCollectAll:
		return StrategyCollectAll, nil
	default:
		return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown chain strategy %q", s)
	}
}

// ChainResult aggregates one chain run. Read-only, single-use.
type ChainResult struct {
	Successes []Result      `json:"successes"`
	Failures  []Result      `json:"failures"`
	Strategy  Strategy      `json:"strategy"`
	Elapsed   time.Duration `json:"elapsed"`
}

// HasSuccess reports whether at least one source produced data.
func (r ChainResult) HasSuccess() bool {
	return len(r.Successes) > 0
}

// Attempted counts sources that actually ran.
func (r ChainResult) Attempted() int {
	return len(r.Successes) + len(r.Failures)
}

// Chain holds an ordered set of sources and executes them against one
// identifier under a chosen strategy.
type Chain struct {
	mu      sync.RWMutex
	sources []Source

	logger *slog.Logger
	tracer trace.Tracer
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithChainLogger sets the chain logger.
func WithChainLogger(logger *slog.Logger) ChainOption {
	return func(c *Chain) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChain builds an empty chain.
func NewChain(opts ...ChainOption) *Chain {
	c := &Chain{
		logger: slog.Default(),
		tracer: otel.Tracer("vindec/source"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Add appends a source. Adding a name twice is a conflict.
func (c *Chain) Add(s Source) error {
	if s == nil {
		return dErrors.New(dErrors.CodeBadRequest, "source must not be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.sources {
		if existing.Name() == s.Name() {
			return dErrors.Newf(dErrors.CodeConflict, "source %q already in chain", s.Name())
		}
	}
	c.sources = append(c.sources, s)
	return nil
}

// Remove drops the named source; reports whether it was present.
func (c *Chain) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, s := range c.sources {
		if s.Name() == name {
			c.sources = append(c.sources[:i], c.sources[i+1:]...)
			return true
		}
	}
	return false
}

// Enable turns the named source on; reports whether it was found.
func (c *Chain) Enable(name string) bool {
	return c.setEnabled(name, true)
}

// Disable turns the named source off; reports whether it was found.
// The local source may ignore the request and stay enabled.
func (c *Chain) Disable(name string) bool {
	return c.setEnabled(name, false)
}

func (c *Chain) setEnabled(name string, enabled bool) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, s := range c.sources {
		if s.Name() == name {
			s.SetEnabled(enabled)
			return true
		}
	}
	return false
}

// SortByPriority reorders the stored sources ascending by priority.
// The sort is stable so equal priorities keep their relative order.
func (c *Chain) SortByPriority() {
	c.mu.Lock()
	defer c.mu.Unlock()

	sort.SliceStable(c.sources, func(i, j int) bool {
		return c.sources[i].Priority() < c.sources[j].Priority()
	})
}

// Reorder moves the named sources to the front in the given order.
// Unlisted sources keep their existing relative order after them.
func (c *Chain) Reorder(names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	byName := make(map[string]Source, len(c.sources))
	for _, s := range c.sources {
		byName[s.Name()] = s
	}

	next := make([]Source, 0, len(c.sources))
	listed := make(map[string]bool, len(names))
	for _, name := range names {
		if s, ok := byName[name]; ok && !listed[name] {
			next = append(next, s)
			listed[name] = true
		}
	}
	for _, s := range c.sources {
		if !listed[s.Name()] {
			next = append(next, s)
		}
	}
	c.sources = next
}

// Names returns source names in their current stored order.
func (c *Chain) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.sources))
	for _, s := range c.sources {
		names = append(names, s.Name())
	}
	return names
}

// EnabledSources returns the enabled sources sorted by priority. Among
// equal priorities the chain's stored order decides.
func (c *Chain) EnabledSources() []Source {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Source, 0, len(c.sources))
	for _, s := range c.sources {
		if s.Enabled() {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority() < out[j].Priority()
	})
	return out
}

// Execute runs the enabled sources against one identifier. With no enabled
// sources it returns an empty result, not an error. Sources whose CanHandle
// declines are skipped silently.
func (c *Chain) Execute(ctx context.Context, id vehicle.Identifier, strategy Strategy) ChainResult {
	ctx, span := c.tracer.Start(ctx, "chain.execute")
	defer span.End()

	start := time.Now()
	enabled := c.EnabledSources()

	span.SetAttributes(
		attribute.String("chain.strategy", string(strategy)),
		attribute.String("identifier.kind", string(id.Kind())),
		attribute.Int("chain.sources_enabled", len(enabled)),
	)

	result := ChainResult{Strategy: strategy}
	if len(enabled) == 0 {
		result.Elapsed = time.Since(start)
		return result
	}

	applicable := make([]Source, 0, len(enabled))
	for _, s := range enabled {
		if !s.CanHandle(id) {
			c.logger.DebugContext(ctx, "source skipped",
				"source", s.Name(),
				"kind", id.Kind(),
			)
			continue
		}
		applicable = append(applicable, s)
	}

	switch strategy {
	case StrategyCollectAll:
		result.Successes, result.Failures = c.runCollectAll(ctx, applicable, id)
	default:
		result.Successes, result.Failures = c.runFailFast(ctx, applicable, id)
	}

	result.Elapsed = time.Since(start)

	observeChainExecution(strategy, result.Elapsed)
	span.SetAttributes(
		attribute.Int("chain.successes", len(result.Successes)),
		attribute.Int("chain.failures", len(result.Failures)),
	)
	return result
}

// runFailFast walks sources in order and stops at the first success.
// Sources after that point are never invoked.
func (c *Chain) runFailFast(ctx context.Context, sources []Source, id vehicle.Identifier) (successes, failures []Result) {
	for _, s := range sources {
		res := s.Decode(ctx, id)
		observeSourceDecode(s.Name(), res.Success)

		if res.Success {
			successes = append(successes, res)
			return successes, failures
		}

		failures = append(failures, res)
		c.logger.WarnContext(ctx, "source decode failed",
			"source", s.Name(),
			"reason", res.Err,
		)
	}
	return successes, failures
}

// runCollectAll fans out over every applicable source. Results keep the
// chain order, not completion order, so merges stay deterministic.
func (c *Chain) runCollectAll(ctx context.Context, sources []Source, id vehicle.Identifier) (successes, failures []Result) {
	if len(sources) == 0 {
		return nil, nil
	}

	results := make([]Result, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range sources {
		g.Go(func() error {
			results[i] = s.Decode(ctx, id)
			return nil
		})
	}
	// Decode never returns an error; Wait only joins the goroutines.
	_ = g.Wait()

	for i, res := range results {
		observeSourceDecode(sources[i].Name(), res.Success)
		if res.Success {
			successes = append(successes, res)
			continue
		}
		failures = append(failures, res)
		c.logger.WarnContext(ctx, "source decode failed",
			"source", sources[i].Name(),
			"reason", res.Err,
		)
	}
	return successes, failures
}
