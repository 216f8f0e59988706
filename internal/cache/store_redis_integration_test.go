//go:build integration

package cache_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Shekel-Africa/vin-package-sub000/internal/cache"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *cache.Redis
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = cache.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.redis.FlushAll(ctx)
	s.Require().NoError(err)
}

func (s *RedisStoreSuite) TestSetGetRoundTrip() {
	ctx := context.Background()

	ok := s.store.Set(ctx, "vin_data_abc123", `{"make":"Honda"}`, time.Hour)
	s.True(ok)

	value, found := s.store.Get(ctx, "vin_data_abc123")
	s.True(found)
	s.Equal(`{"make":"Honda"}`, value)
}

func (s *RedisStoreSuite) TestGetMissingKey() {
	ctx := context.Background()

	_, found := s.store.Get(ctx, "never_set")
	s.False(found)
}

func (s *RedisStoreSuite) TestKeyNamespacing() {
	ctx := context.Background()

	ok := s.store.Set(ctx, "local_vin_deadbeef", "cached", time.Hour)
	s.Require().True(ok)

	// The store namespaces keys so a shared Redis can host other tenants.
	raw, err := s.redis.Client.Get(ctx, "vindec:local_vin_deadbeef").Result()
	s.Require().NoError(err)
	s.Equal("cached", raw)

	keys, err := s.redis.Client.Keys(ctx, "local_vin_deadbeef").Result()
	s.Require().NoError(err)
	s.Empty(keys, "unprefixed key must not exist")
}

func (s *RedisStoreSuite) TestTTLExpiry() {
	ctx := context.Background()

	ok := s.store.Set(ctx, "short_lived", "value", 50*time.Millisecond)
	s.Require().True(ok)

	_, found := s.store.Get(ctx, "short_lived")
	s.True(found, "entry should be readable before expiry")

	time.Sleep(100 * time.Millisecond)

	_, found = s.store.Get(ctx, "short_lived")
	s.False(found, "entry should expire after its TTL")
	s.False(s.store.Has(ctx, "short_lived"))
}

func (s *RedisStoreSuite) TestZeroTTLPersists() {
	ctx := context.Background()

	ok := s.store.Set(ctx, "durable", "value", 0)
	s.Require().True(ok)

	ttl, err := s.redis.Client.TTL(ctx, "vindec:durable").Result()
	s.Require().NoError(err)
	s.Equal(time.Duration(-1), ttl, "zero TTL should store without expiry")

	_, found := s.store.Get(ctx, "durable")
	s.True(found)
}

func (s *RedisStoreSuite) TestDelete() {
	ctx := context.Background()

	s.Require().True(s.store.Set(ctx, "doomed", "value", time.Hour))

	s.True(s.store.Delete(ctx, "doomed"))
	s.False(s.store.Has(ctx, "doomed"))

	s.False(s.store.Delete(ctx, "doomed"), "second delete should report nothing removed")
}

func (s *RedisStoreSuite) TestOverwriteReplacesValueAndTTL() {
	ctx := context.Background()

	s.Require().True(s.store.Set(ctx, "vin_data_x", "first", 50*time.Millisecond))
	s.Require().True(s.store.Set(ctx, "vin_data_x", "second", time.Hour))

	time.Sleep(100 * time.Millisecond)

	value, found := s.store.Get(ctx, "vin_data_x")
	s.True(found, "overwrite should reset the TTL")
	s.Equal("second", value)
}

func (s *RedisStoreSuite) TestConcurrentSetAndGet() {
	ctx := context.Background()

	const goroutines = 20
	var wg sync.WaitGroup
	var setFailures atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			key := fmt.Sprintf("concurrent_%d", idx)
			if !s.store.Set(ctx, key, fmt.Sprintf("value_%d", idx), time.Hour) {
				setFailures.Add(1)
			}
		}(i)
	}

	wg.Wait()
	s.Equal(int32(0), setFailures.Load(), "all writes should succeed")

	for i := 0; i < goroutines; i++ {
		value, found := s.store.Get(ctx, fmt.Sprintf("concurrent_%d", i))
		s.Require().True(found)
		s.Equal(fmt.Sprintf("value_%d", i), value)
	}
}
