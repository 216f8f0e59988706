//go:build integration

package worker_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	platformpg "github.com/Shekel-Africa/vin-package-sub000/internal/platform/postgres"
	audit "github.com/Shekel-Africa/vin-package-sub000/pkg/platform/audit"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/platform/audit/kafka"
	auditpg "github.com/Shekel-Africa/vin-package-sub000/pkg/platform/audit/store/postgres"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/platform/audit/worker"
	txcontext "github.com/Shekel-Africa/vin-package-sub000/pkg/platform/tx"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/testutil/containers"
)

// RelaySuite exercises the full audit pipeline: events appended to the
// postgres outbox are relayed to a Kafka-compatible broker and marked
// published.
type RelaySuite struct {
	suite.Suite
	pg       *containers.PostgresContainer
	redpanda *containers.RedpandaContainer
	store    *auditpg.Store
	producer *kafka.Producer
	topic    string
}

func TestRelaySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.redpanda = containers.NewRedpandaContainer(s.T())

	err := platformpg.EnsureSchema(context.Background(), s.pg.DB)
	s.Require().NoError(err)
}

func (s *RelaySuite) SetupTest() {
	ctx := context.Background()

	_, err := s.pg.DB.ExecContext(ctx, `TRUNCATE audit_outbox`)
	s.Require().NoError(err)

	// A fresh topic per test keeps consumed offsets independent.
	s.topic = fmt.Sprintf("vindec.audit.%d", time.Now().UnixNano())
	s.producer, err = kafka.New(ctx, []string{s.redpanda.Broker}, s.topic)
	s.Require().NoError(err)
	s.T().Cleanup(s.producer.Close)

	s.store = auditpg.New(s.pg.DB)
}

func (s *RelaySuite) consume(limit int) []*kgo.Record {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Broker),
		kgo.ConsumeTopics(s.topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var records []*kgo.Record
	for len(records) < limit {
		fetches := client.PollFetches(ctx)
		s.Require().NoError(fetches.Err())
		fetches.EachRecord(func(r *kgo.Record) {
			records = append(records, r)
		})
	}
	return records
}

func (s *RelaySuite) appendEvent(identifier string, action audit.Action) {
	err := s.store.Append(context.Background(), audit.Event{
		ID:         fmt.Sprintf("evt-%d", time.Now().UnixNano()),
		Category:   action.Category(),
		Action:     string(action),
		Identifier: identifier,
		Timestamp:  time.Now().UTC(),
	})
	s.Require().NoError(err)
}

func (s *RelaySuite) TestDrainOncePublishesAndMarks() {
	ctx := context.Background()

	s.appendEvent("1HGCM82633A******", audit.ActionDecodeRequested)
	s.appendEvent("1HGCM82633A******", audit.ActionDecodeCompleted)

	relay := worker.NewRelay(s.store, s.producer)
	published, err := relay.DrainOnce(ctx)
	s.Require().NoError(err)
	s.Equal(2, published)

	records := s.consume(2)
	s.Require().Len(records, 2)

	var first audit.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &first))
	s.Equal(string(audit.ActionDecodeRequested), first.Action)
	s.Equal("1HGCM82633A******", string(records[0].Key))

	// Drained rows are marked published; a second pass finds nothing.
	published, err = relay.DrainOnce(ctx)
	s.Require().NoError(err)
	s.Zero(published)

	rows, err := s.store.Unpublished(ctx, 10)
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *RelaySuite) TestAppendJoinsCallerTransaction() {
	ctx := context.Background()

	tx, err := s.pg.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)

	err = s.store.Append(txcontext.WithTx(ctx, tx), audit.Event{
		ID:         "evt-tx",
		Category:   audit.CategoryOperations,
		Action:     string(audit.ActionDecodeRequested),
		Identifier: "1HGCM82633A******",
		Timestamp:  time.Now().UTC(),
	})
	s.Require().NoError(err)

	// The row must not be visible outside the transaction.
	rows, err := s.store.Unpublished(ctx, 10)
	s.Require().NoError(err)
	s.Empty(rows)

	s.Require().NoError(tx.Rollback())

	rows, err = s.store.Unpublished(ctx, 10)
	s.Require().NoError(err)
	s.Empty(rows, "rolled-back append must leave no outbox row")
}

func (s *RelaySuite) TestRecordKeyGroupsByIdentifier() {
	ctx := context.Background()

	s.appendEvent("1HGCM82633A******", audit.ActionDecodeRequested)
	s.appendEvent("JZA80-1******", audit.ActionDecodeRequested)

	relay := worker.NewRelay(s.store, s.producer)
	published, err := relay.DrainOnce(ctx)
	s.Require().NoError(err)
	s.Equal(2, published)

	records := s.consume(2)
	keys := []string{string(records[0].Key), string(records[1].Key)}
	s.ElementsMatch(keys, []string{"1HGCM82633A******", "JZA80-1******"})
}

func (s *RelaySuite) TestBatchSizeLimitsDrain() {
	ctx := context.Background()

	for i := range 5 {
		s.appendEvent(fmt.Sprintf("VIN%02d", i), audit.ActionDecodeRequested)
	}

	relay := worker.NewRelay(s.store, s.producer, worker.WithBatchSize(2))

	published, err := relay.DrainOnce(ctx)
	s.Require().NoError(err)
	s.Equal(2, published)

	rows, err := s.store.Unpublished(ctx, 10)
	s.Require().NoError(err)
	s.Len(rows, 3)
}

func (s *RelaySuite) TestRunDrainsUntilCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.appendEvent("1HGCM82633A******", audit.ActionLookupSucceeded)

	relay := worker.NewRelay(s.store, s.producer, worker.WithInterval(50*time.Millisecond))

	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	s.Eventually(func() bool {
		rows, err := s.store.Unpublished(context.Background(), 10)
		return err == nil && len(rows) == 0
	}, 10*time.Second, 100*time.Millisecond, "relay should drain the outbox")

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.Fail("relay did not stop after context cancellation")
	}
}
