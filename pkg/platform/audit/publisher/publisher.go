// Package publisher emits audit events to a backing store, synchronously
// by default or through a bounded buffer with a drain goroutine.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	audit "github.com/Shekel-Africa/vin-package-sub000/pkg/platform/audit"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/requestcontext"
)

var (
	errBufferFull = errors.New("audit buffer full")
	errClosed     = errors.New("audit publisher closed")
)

// Publisher writes events to its store. In async mode Emit never blocks:
// a full buffer drops the event and reports it.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	sampler *Sampler
	metrics *Metrics

	buffer chan audit.Event
	quit   chan struct{}
	done   chan struct{}
	closed atomic.Bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with a buffer of n
// events drained by one background goroutine.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.buffer = make(chan audit.Event, n)
		}
	}
}

// WithSampler samples operations-category events. Provider and refdata
// events are never sampled.
func WithSampler(s *Sampler) Option {
	return func(p *Publisher) {
		p.sampler = s
	}
}

// WithLogger sets the logger for append failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics attaches publisher metrics. Nil is fine; all metric calls
// are nil-safe.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// NewPublisher builds a synchronous publisher unless WithAsyncBuffer is
// given.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.buffer != nil {
		p.quit = make(chan struct{})
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

// Emit records one event. Missing ID, category and timestamp are filled
// in. In async mode a full buffer drops the event and returns an error;
// the caller is not expected to retry.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if p.closed.Load() {
		return errClosed
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Category == "" {
		event.Category = audit.Action(event.Action).Category()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}

	if p.sampler != nil && event.Category == audit.CategoryOperations &&
		!p.sampler.Keep(event.Action) {
		p.metrics.IncSampled()
		return nil
	}

	if p.buffer == nil {
		if err := p.store.Append(ctx, event); err != nil {
			p.metrics.IncAppendFailure()
			return err
		}
		p.metrics.IncEmitted(string(event.Category))
		return nil
	}

	select {
	case p.buffer <- event:
		p.metrics.IncEmitted(string(event.Category))
		return nil
	default:
		if err := ctx.Err(); err != nil {
			return err
		}
		p.metrics.IncDropped()
		return errBufferFull
	}
}

// List returns the stored events for one masked identifier.
func (p *Publisher) List(ctx context.Context, identifier string) ([]audit.Event, error) {
	return p.store.List(ctx, identifier)
}

// ListRecent returns the most recent stored events.
func (p *Publisher) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Close drains any buffered events and stops the background goroutine.
// Safe to call more than once. The buffer channel itself is never closed:
// an Emit racing Close may still send into it, and such an event is simply
// dropped rather than panicking the sender.
func (p *Publisher) Close() {
	if p.closed.Swap(true) {
		return
	}
	if p.buffer != nil {
		close(p.quit)
		<-p.done
	}
}

func (p *Publisher) drain() {
	defer close(p.done)
	for {
		select {
		case event := <-p.buffer:
			p.append(event)
		case <-p.quit:
			for {
				select {
				case event := <-p.buffer:
					p.append(event)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) append(event audit.Event) {
	if err := p.store.Append(context.Background(), event); err != nil {
		p.metrics.IncAppendFailure()
		p.logger.Error("audit append failed",
			"action", event.Action, "error", err)
	}
}
