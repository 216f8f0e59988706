package cache

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/Shekel-Africa/vin-package-sub000/pkg/platform/sentinel"
)

// Clock abstracts time.Now for store testability.
type Clock func() time.Time

// Postgres persists cache entries in PostgreSQL. Useful when a durable
// cache should survive restarts without running Redis.
type Postgres struct {
	db     *sql.DB
	clock  Clock
	logger *slog.Logger
}

// PostgresOption configures a Postgres store.
type PostgresOption func(*Postgres)

// WithPostgresClock sets the clock function for testability.
func WithPostgresClock(clock Clock) PostgresOption {
	return func(p *Postgres) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithPostgresLogger sets the logger used to report degraded operations.
func WithPostgresLogger(logger *slog.Logger) PostgresOption {
	return func(p *Postgres) {
		p.logger = logger
	}
}

// NewPostgres constructs a Postgres-backed cache store. The decode_cache
// table is created by platform/postgres bootstrap.
func NewPostgres(db *sql.DB, opts ...PostgresOption) *Postgres {
	p := &Postgres{
		db:     db,
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool) {
	value, err := p.lookup(ctx, key)
	switch {
	case err == nil:
		return value, true
	case errors.Is(err, sentinel.ErrExpired):
		// Stale rows are reaped on read; Sweep covers the rest.
		p.Delete(ctx, key)
		return "", false
	case errors.Is(err, sentinel.ErrNotFound):
		return "", false
	default:
		p.logger.WarnContext(ctx, "postgres cache get degraded to miss",
			"key", key,
			"error", err,
		)
		return "", false
	}
}

// lookup fetches one row and classifies its state: sentinel.ErrNotFound for
// absent keys, sentinel.ErrExpired when the TTL has elapsed, any other error
// verbatim from the driver.
func (p *Postgres) lookup(ctx context.Context, key string) (string, error) {
	var (
		value     string
		expiresAt sql.NullTime
	)
	err := p.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM decode_cache WHERE key = $1`, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if expiresAt.Valid && p.clock().After(expiresAt.Time) {
		return "", sentinel.ErrExpired
	}
	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: p.clock().Add(ttl), Valid: true}
	}
	query := `
		INSERT INTO decode_cache (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			expires_at = EXCLUDED.expires_at
	`
	if _, err := p.db.ExecContext(ctx, query, key, value, expiresAt); err != nil {
		p.logger.WarnContext(ctx, "postgres cache set failed",
			"key", key,
			"error", err,
		)
		return false
	}
	return true
}

func (p *Postgres) Delete(ctx context.Context, key string) bool {
	res, err := p.db.ExecContext(ctx, `DELETE FROM decode_cache WHERE key = $1`, key)
	if err != nil {
		p.logger.WarnContext(ctx, "postgres cache delete failed",
			"key", key,
			"error", err,
		)
		return false
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false
	}
	return affected > 0
}

func (p *Postgres) Has(ctx context.Context, key string) bool {
	var exists bool
	err := p.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM decode_cache
			WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)
		)`, key, p.clock(),
	).Scan(&exists)
	if err != nil {
		p.logger.WarnContext(ctx, "postgres cache exists check degraded to miss",
			"key", key,
			"error", err,
		)
		return false
	}
	return exists
}

// Sweep removes expired rows and returns how many were dropped.
func (p *Postgres) Sweep(ctx context.Context) int64 {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM decode_cache WHERE expires_at IS NOT NULL AND expires_at <= $1`, p.clock(),
	)
	if err != nil {
		p.logger.WarnContext(ctx, "postgres cache sweep failed", "error", err)
		return 0
	}
	affected, _ := res.RowsAffected()
	return affected
}
