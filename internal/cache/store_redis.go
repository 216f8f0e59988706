package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var redisOpDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "vindec_cache_redis_op_duration_ms",
	Help:    "Latency of Redis cache operations in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 100},
}, []string{"op"})

// redisKeyPrefix namespaces every engine key inside a shared Redis.
const redisKeyPrefix = "vindec:"

// Redis is the Redis-backed Cache implementation, recommended when several
// decoder processes should share cached records.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithRedisLogger sets the logger used to report degraded operations.
func WithRedisLogger(logger *slog.Logger) RedisOption {
	return func(r *Redis) {
		r.logger = logger
	}
}

// NewRedis constructs a Redis-backed cache store.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	start := time.Now()
	defer observeRedisOp("get", start)

	value, err := r.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		r.logger.WarnContext(ctx, "redis cache get degraded to miss",
			"key", key,
			"error", err,
		)
		return "", false
	}
	return value, true
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	start := time.Now()
	defer observeRedisOp("set", start)

	if err := r.client.Set(ctx, redisKeyPrefix+key, value, ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "redis cache set failed",
			"key", key,
			"error", err,
		)
		return false
	}
	return true
}

func (r *Redis) Delete(ctx context.Context, key string) bool {
	start := time.Now()
	defer observeRedisOp("delete", start)

	removed, err := r.client.Del(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		r.logger.WarnContext(ctx, "redis cache delete failed",
			"key", key,
			"error", err,
		)
		return false
	}
	return removed > 0
}

func (r *Redis) Has(ctx context.Context, key string) bool {
	start := time.Now()
	defer observeRedisOp("has", start)

	n, err := r.client.Exists(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		r.logger.WarnContext(ctx, "redis cache exists check degraded to miss",
			"key", key,
			"error", err,
		)
		return false
	}
	return n > 0
}

func observeRedisOp(op string, start time.Time) {
	redisOpDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
