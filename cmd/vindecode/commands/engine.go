package commands

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/Shekel-Africa/vin-package-sub000/internal/cache"
	"github.com/Shekel-Africa/vin-package-sub000/internal/decode"
	"github.com/Shekel-Africa/vin-package-sub000/internal/merge"
	"github.com/Shekel-Africa/vin-package-sub000/internal/platform/logger"
	platformpg "github.com/Shekel-Africa/vin-package-sub000/internal/platform/postgres"
	platformredis "github.com/Shekel-Africa/vin-package-sub000/internal/platform/redis"
	"github.com/Shekel-Africa/vin-package-sub000/internal/source"
	"github.com/Shekel-Africa/vin-package-sub000/internal/source/clearvin"
	"github.com/Shekel-Africa/vin-package-sub000/internal/source/local"
	"github.com/Shekel-Africa/vin-package-sub000/internal/source/nhtsa"
	dErrors "github.com/Shekel-Africa/vin-package-sub000/pkg/domain-errors"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/platform/audit"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/platform/audit/kafka"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/platform/audit/publisher"
	auditmem "github.com/Shekel-Africa/vin-package-sub000/pkg/platform/audit/store/memory"
	auditpg "github.com/Shekel-Africa/vin-package-sub000/pkg/platform/audit/store/postgres"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/platform/audit/worker"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/platform/httpclient"
)

// engineOptions are the per-invocation overrides the decode flags carry.
type engineOptions struct {
	strategy  string
	mergeMode string
	newest    bool
	legacy    bool
}

// engine is one wired decode pipeline plus the resources behind it. Built
// per command invocation and closed when the command returns.
type engine struct {
	orch      *decode.Orchestrator
	publisher *publisher.Publisher
	relay     *worker.Relay
	producer  *kafka.Producer
	db        *sql.DB
	redis     *platformredis.Client
	logger    *slog.Logger
}

// buildEngine assembles config, logger, cache store, sources, chain, merger,
// orchestrator and audit publishing into one ready pipeline.
func (c *CLI) buildEngine(ctx context.Context, opts engineOptions) (*engine, error) {
	log := logger.New(c.cfg.LogLevel, c.cfg.LogFormat)
	eng := &engine{logger: log}

	store, err := c.openCache(ctx, eng)
	if err != nil {
		return nil, err
	}
	if err := c.wireAudit(ctx, eng); err != nil {
		eng.close()
		return nil, err
	}

	localSrc := local.New(
		local.WithCache(store, c.cfg.Cache.SourceTTL),
		local.WithLogger(log),
	)
	remoteSrc := nhtsa.New(c.cfg.NHTSA.BaseURL,
		nhtsa.WithHTTPClient(httpclient.New(c.cfg.NHTSA.Timeout, httpclient.WithLogger(log))),
		nhtsa.WithCache(store, c.cfg.Cache.SourceTTL),
		nhtsa.WithLogger(log),
	)

	if opts.legacy {
		orch, err := decode.NewLegacy(localSrc, remoteSrc, store,
			decode.WithCacheTTL(c.cfg.Cache.DecodeTTL),
			decode.WithLogger(log),
			decode.WithAuditPublisher(eng.publisher),
		)
		if err != nil {
			eng.close()
			return nil, err
		}
		eng.orch = orch
		return eng, nil
	}

	chainStrategy, err := source.ParseStrategy(firstNonEmpty(opts.strategy, c.cfg.Chain.Strategy))
	if err != nil {
		eng.close()
		return nil, err
	}
	mergeStrategy, err := merge.ParseStrategy(firstNonEmpty(opts.mergeMode, c.cfg.Chain.MergeStrategy))
	if err != nil {
		eng.close()
		return nil, err
	}

	ch := source.NewChain(source.WithChainLogger(log))
	if err := ch.Add(remoteSrc); err != nil {
		eng.close()
		return nil, err
	}
	if c.cfg.ClearVIN.Email != "" && c.cfg.ClearVIN.Password != "" {
		cv := clearvin.New(c.cfg.ClearVIN.BaseURL, c.cfg.ClearVIN.Email, c.cfg.ClearVIN.Password,
			clearvin.WithHTTPClient(httpclient.New(c.cfg.ClearVIN.Timeout, httpclient.WithLogger(log))),
			clearvin.WithLogger(log),
		)
		if err := ch.Add(cv); err != nil {
			eng.close()
			return nil, err
		}
	}
	if err := ch.Add(localSrc); err != nil {
		eng.close()
		return nil, err
	}
	ch.SortByPriority()

	merger := merge.New(
		merge.WithStrategy(mergeStrategy),
		merge.WithNewest(opts.newest),
	)

	orch, err := decode.New(ch, merger, store,
		decode.WithStrategy(chainStrategy),
		decode.WithCacheTTL(c.cfg.Cache.DecodeTTL),
		decode.WithLogger(log),
		decode.WithAuditPublisher(eng.publisher),
		decode.WithLocalSource(localSrc),
	)
	if err != nil {
		eng.close()
		return nil, err
	}
	eng.orch = orch
	return eng, nil
}

// openCache selects the cache backend. Memory is the default; Redis and
// Postgres must be explicitly configured.
func (c *CLI) openCache(ctx context.Context, eng *engine) (cache.Cache, error) {
	switch c.cfg.Cache.Backend {
	case "", "memory":
		return cache.NewMemory(), nil
	case "redis":
		rc, err := platformredis.New(c.cfg.Redis)
		if err != nil {
			return nil, err
		}
		if rc == nil {
			return nil, dErrors.New(dErrors.CodeBadRequest,
				"redis cache backend selected but VINDEC_REDIS_ADDR is not set")
		}
		eng.redis = rc
		return cache.NewRedis(rc.Client), nil
	case "postgres":
		db, err := c.openDB(ctx, eng)
		if err != nil {
			return nil, err
		}
		return cache.NewPostgres(db), nil
	default:
		return nil, dErrors.Newf(dErrors.CodeBadRequest,
			"unknown cache backend %q", c.cfg.Cache.Backend)
	}
}

// wireAudit builds the audit publisher. With a Postgres DSN the events land
// in the durable outbox; with brokers on top they get relayed to Kafka when
// the engine closes. Without either, events stay in process.
func (c *CLI) wireAudit(ctx context.Context, eng *engine) error {
	var store audit.Store = auditmem.NewStore()

	if c.cfg.Postgres.DSN != "" {
		db, err := c.openDB(ctx, eng)
		if err != nil {
			return err
		}
		outbox := auditpg.New(db)
		store = outbox

		if len(c.cfg.Audit.Brokers) > 0 {
			producer, err := kafka.New(ctx, c.cfg.Audit.Brokers, c.cfg.Audit.Topic)
			if err != nil {
				return err
			}
			eng.producer = producer
			eng.relay = worker.NewRelay(outbox, producer, worker.WithLogger(eng.logger))
		}
	} else if len(c.cfg.Audit.Brokers) > 0 {
		eng.logger.Warn("audit brokers configured without a postgres outbox; events stay in process")
	}

	eng.publisher = publisher.NewPublisher(store,
		publisher.WithAsyncBuffer(c.cfg.Audit.Buffer),
		publisher.WithLogger(eng.logger),
	)
	return nil
}

// openDB opens the shared Postgres handle on first use. Open bootstraps the
// schema.
func (c *CLI) openDB(ctx context.Context, eng *engine) (*sql.DB, error) {
	if eng.db != nil {
		return eng.db, nil
	}
	if c.cfg.Postgres.DSN == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest,
			"postgres requested but VINDEC_POSTGRES_DSN is not set")
	}
	db, err := platformpg.Open(ctx, c.cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	eng.db = db
	return db, nil
}

// close drains audit publishing and releases backend connections. The
// publisher closes first so every emitted event reaches the store before the
// outbox drains.
func (e *engine) close() {
	if e.publisher != nil {
		e.publisher.Close()
	}
	if e.relay != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := e.relay.DrainOnce(ctx); err != nil {
			e.logger.Warn("audit outbox drain failed", "error", err)
		}
		cancel()
	}
	if e.producer != nil {
		e.producer.Close()
	}
	if e.db != nil {
		_ = e.db.Close()
	}
	if e.redis != nil {
		_ = e.redis.Close()
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
