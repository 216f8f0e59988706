// Package worker relays unpublished audit outbox rows to Kafka.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shekel-Africa/vin-package-sub000/pkg/platform/audit/store/postgres"
)

// Outbox is the slice of the Postgres store the relay needs.
type Outbox interface {
	Unpublished(ctx context.Context, limit int) ([]postgres.OutboxRow, error)
	MarkPublished(ctx context.Context, ids []int64) error
}

// Producer publishes one payload keyed by aggregate ID.
type Producer interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Relay moves outbox rows to Kafka. Rows are marked published only after
// a successful produce, so delivery is at-least-once.
type Relay struct {
	outbox   Outbox
	producer Producer
	interval time.Duration
	batch    int
	logger   *slog.Logger
}

// Option configures a Relay.
type Option func(*Relay)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithBatchSize bounds the rows drained per tick.
func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batch = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRelay(outbox Outbox, producer Producer, opts ...Option) *Relay {
	r := &Relay{
		outbox:   outbox,
		producer: producer,
		interval: 5 * time.Second,
		batch:    100,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Run polls until the context is cancelled. Drain errors are logged and
// retried on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.DrainOnce(ctx); err != nil {
				r.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

// DrainOnce publishes one batch of unpublished rows and returns how many
// made it out. A produce failure stops the batch; rows already published
// are still marked so they are not sent twice.
func (r *Relay) DrainOnce(ctx context.Context) (int, error) {
	rows, err := r.outbox.Unpublished(ctx, r.batch)
	if err != nil {
		return 0, err
	}

	var done []int64
	var produceErr error
	for _, row := range rows {
		if err := r.producer.Publish(ctx, row.AggregateID, row.Payload); err != nil {
			produceErr = fmt.Errorf("publish outbox row %d: %w", row.ID, err)
			break
		}
		done = append(done, row.ID)
	}

	if len(done) > 0 {
		if err := r.outbox.MarkPublished(ctx, done); err != nil {
			return len(done), err
		}
	}
	return len(done), produceErr
}
