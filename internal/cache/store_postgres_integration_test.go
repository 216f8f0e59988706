//go:build integration

package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Shekel-Africa/vin-package-sub000/internal/cache"
	platformpg "github.com/Shekel-Africa/vin-package-sub000/internal/platform/postgres"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/testutil/containers"
)

// fakeClock lets tests advance cache time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	clock *fakeClock
	store *cache.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())

	err := platformpg.EnsureSchema(context.Background(), s.pg.DB)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pg.DB.ExecContext(context.Background(), `TRUNCATE decode_cache`)
	s.Require().NoError(err)

	s.clock = &fakeClock{now: time.Now()}
	s.store = cache.NewPostgres(s.pg.DB, cache.WithPostgresClock(s.clock.Now))
}

func (s *PostgresStoreSuite) TestSetGetRoundTrip() {
	ctx := context.Background()

	ok := s.store.Set(ctx, "vin_data_abc123", `{"make":"Toyota"}`, time.Hour)
	s.True(ok)

	value, found := s.store.Get(ctx, "vin_data_abc123")
	s.True(found)
	s.Equal(`{"make":"Toyota"}`, value)
}

func (s *PostgresStoreSuite) TestGetMissingKey() {
	_, found := s.store.Get(context.Background(), "never_set")
	s.False(found)
}

func (s *PostgresStoreSuite) TestUpsertOverwrites() {
	ctx := context.Background()

	s.Require().True(s.store.Set(ctx, "vin_data_x", "first", time.Hour))
	s.Require().True(s.store.Set(ctx, "vin_data_x", "second", time.Hour))

	value, found := s.store.Get(ctx, "vin_data_x")
	s.Require().True(found)
	s.Equal("second", value)

	var count int
	err := s.pg.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM decode_cache WHERE key = $1`, "vin_data_x",
	).Scan(&count)
	s.Require().NoError(err)
	s.Equal(1, count, "upsert must not duplicate rows")
}

func (s *PostgresStoreSuite) TestExpiry() {
	ctx := context.Background()

	s.Require().True(s.store.Set(ctx, "short_lived", "value", time.Minute))

	_, found := s.store.Get(ctx, "short_lived")
	s.True(found)
	s.True(s.store.Has(ctx, "short_lived"))

	s.clock.Advance(2 * time.Minute)

	_, found = s.store.Get(ctx, "short_lived")
	s.False(found, "entry should expire once the clock passes expires_at")
	s.False(s.store.Has(ctx, "short_lived"))

	var count int
	err := s.pg.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM decode_cache WHERE key = $1`, "short_lived",
	).Scan(&count)
	s.Require().NoError(err)
	s.Equal(0, count, "expired row is reaped by the read that finds it stale")
}

func (s *PostgresStoreSuite) TestZeroTTLPersists() {
	ctx := context.Background()

	s.Require().True(s.store.Set(ctx, "durable", "value", 0))

	s.clock.Advance(1000 * time.Hour)

	value, found := s.store.Get(ctx, "durable")
	s.True(found)
	s.Equal("value", value)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()

	s.Require().True(s.store.Set(ctx, "doomed", "value", time.Hour))

	s.True(s.store.Delete(ctx, "doomed"))
	s.False(s.store.Has(ctx, "doomed"))

	s.False(s.store.Delete(ctx, "doomed"), "second delete should report nothing removed")
}

func (s *PostgresStoreSuite) TestSweepRemovesOnlyExpired() {
	ctx := context.Background()

	s.Require().True(s.store.Set(ctx, "expired_a", "v", time.Minute))
	s.Require().True(s.store.Set(ctx, "expired_b", "v", time.Minute))
	s.Require().True(s.store.Set(ctx, "fresh", "v", time.Hour))
	s.Require().True(s.store.Set(ctx, "durable", "v", 0))

	s.clock.Advance(30 * time.Minute)

	removed := s.store.Sweep(ctx)
	s.Equal(int64(2), removed)

	s.False(s.store.Has(ctx, "expired_a"))
	s.False(s.store.Has(ctx, "expired_b"))
	s.True(s.store.Has(ctx, "fresh"))
	s.True(s.store.Has(ctx, "durable"))
}

func (s *PostgresStoreSuite) TestSurvivesReconnect() {
	ctx := context.Background()

	s.Require().True(s.store.Set(ctx, "persistent", "value", time.Hour))

	// A second store over the same database sees the entry; the cache is
	// durable across process restarts.
	second := cache.NewPostgres(s.pg.DB, cache.WithPostgresClock(s.clock.Now))
	value, found := second.Get(ctx, "persistent")
	s.True(found)
	s.Equal("value", value)
}
