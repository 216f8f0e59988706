// Package config builds runtime configuration from environment variables so
// main stays lean. Every knob has a sane default; optional backends stay off
// until their settings are provided.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "github.com/Shekel-Africa/vin-package-sub000/pkg/platform/strings"
)

// Config aggregates all settings the decoder wiring needs.
type Config struct {
	LogLevel  string
	LogFormat string

	Cache    CacheConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	NHTSA    NHTSAConfig
	ClearVIN ClearVINConfig
	Chain    ChainConfig
	Audit    AuditConfig
}

// CacheConfig selects the cache backend and retention windows.
type CacheConfig struct {
	Backend   string
	DecodeTTL time.Duration
	SourceTTL time.Duration
}

// RedisConfig carries connection settings for the Redis cache backend.
// An empty Addr means Redis is not configured.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig carries the DSN for the durable cache and audit outbox.
// An empty DSN means PostgreSQL is not configured.
type PostgresConfig struct {
	DSN string
}

// NHTSAConfig points at the public vPIC decoder.
type NHTSAConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ClearVINConfig carries credentials for the commercial report provider.
// Empty credentials leave the source disabled.
type ClearVINConfig struct {
	BaseURL  string
	Email    string
	Password string
	Timeout  time.Duration
}

// ChainConfig sets default chain and merge behavior; CLI flags override.
type ChainConfig struct {
	Strategy      string
	MergeStrategy string
}

// AuditConfig controls audit event publishing. Empty Brokers keeps audit
// in-process only.
type AuditConfig struct {
	Brokers []string
	Topic   string
	Buffer  int
}

// FromEnv builds a Config from VINDEC_* environment variables.
func FromEnv() Config {
	return Config{
		LogLevel:  getenv("VINDEC_LOG_LEVEL", "info"),
		LogFormat: getenv("VINDEC_LOG_FORMAT", "text"),
		Cache: CacheConfig{
			Backend:   getenv("VINDEC_CACHE_BACKEND", "memory"),
			DecodeTTL: getenvDuration("VINDEC_CACHE_TTL", 720*time.Hour),
			SourceTTL: getenvDuration("VINDEC_SOURCE_CACHE_TTL", 168*time.Hour),
		},
		Redis: RedisConfig{
			Addr:         os.Getenv("VINDEC_REDIS_ADDR"),
			Password:     os.Getenv("VINDEC_REDIS_PASSWORD"),
			DB:           getenvInt("VINDEC_REDIS_DB", 0),
			PoolSize:     getenvInt("VINDEC_REDIS_POOL_SIZE", 10),
			MinIdleConns: getenvInt("VINDEC_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getenvDuration("VINDEC_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getenvDuration("VINDEC_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getenvDuration("VINDEC_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("VINDEC_POSTGRES_DSN"),
		},
		NHTSA: NHTSAConfig{
			BaseURL: getenv("VINDEC_NHTSA_BASE_URL", "https://vpic.nhtsa.dot.gov/api"),
			Timeout: getenvDuration("VINDEC_NHTSA_TIMEOUT", 10*time.Second),
		},
		ClearVIN: ClearVINConfig{
			BaseURL:  getenv("VINDEC_CLEARVIN_BASE_URL", "https://api.clearvin.com/v1"),
			Email:    os.Getenv("VINDEC_CLEARVIN_EMAIL"),
			Password: os.Getenv("VINDEC_CLEARVIN_PASSWORD"),
			Timeout:  getenvDuration("VINDEC_CLEARVIN_TIMEOUT", 15*time.Second),
		},
		Chain: ChainConfig{
			Strategy:      getenv("VINDEC_CHAIN_STRATEGY", "fail_fast"),
			MergeStrategy: getenv("VINDEC_MERGE_STRATEGY", "priority"),
		},
		Audit: AuditConfig{
			Brokers: splitList(os.Getenv("VINDEC_KAFKA_BROKERS")),
			Topic:   getenv("VINDEC_AUDIT_TOPIC", "vindec.audit.events"),
			Buffer:  getenvInt("VINDEC_AUDIT_BUFFER", 256),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// splitList parses a comma-separated env value, dropping blanks and
// duplicate entries (a broker listed twice is still one broker).
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	return pstrings.DedupeAndTrim(strings.Split(v, ","))
}
