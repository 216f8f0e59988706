// Package postgres persists audit events through a transactional outbox.
// Rows are relayed to Kafka by the outbox worker; the table doubles as the
// queryable event log for List calls.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	audit "github.com/Shekel-Africa/vin-package-sub000/pkg/platform/audit"
	txcontext "github.com/Shekel-Africa/vin-package-sub000/pkg/platform/tx"
)

// Store writes audit events to the audit_outbox table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// execer joins an enclosing transaction when the caller carries one in
// context, so an outbox write commits atomically with the caller's own
// rows.
func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append inserts one event into the outbox.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	aggregateID := event.Identifier
	if aggregateID == "" {
		aggregateID = event.ID
	}

	query := `
		INSERT INTO audit_outbox (aggregate_type, aggregate_id, payload)
		VALUES ($1, $2, $3)
	`
	if _, err := s.execer(ctx).ExecContext(ctx, query,
		string(event.Category), aggregateID, payload); err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// List returns the events recorded for one masked identifier, oldest
// first.
func (s *Store) List(ctx context.Context, identifier string) ([]audit.Event, error) {
	query := `
		SELECT payload FROM audit_outbox
		WHERE aggregate_id = $1
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, identifier)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListRecent returns up to limit events, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT payload FROM audit_outbox
		ORDER BY id DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// OutboxRow is one unpublished outbox entry handed to the relay. The
// aggregate ID becomes the Kafka record key so events for one identifier
// stay ordered.
type OutboxRow struct {
	ID          int64
	AggregateID string
	Payload     []byte
}

// Unpublished returns up to limit outbox rows not yet relayed to Kafka,
// oldest first.
func (s *Store) Unpublished(ctx context.Context, limit int) ([]OutboxRow, error) {
	query := `
		SELECT id, aggregate_id, payload FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY id
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var batch []OutboxRow
	for rows.Next() {
		var row OutboxRow
		if err := rows.Scan(&row.ID, &row.AggregateID, &row.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		batch = append(batch, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return batch, nil
}

// MarkPublished stamps the given outbox rows as relayed.
func (s *Store) MarkPublished(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
		UPDATE audit_outbox SET published_at = now()
		WHERE id = ANY($1)
	`
	if _, err := s.db.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		var event audit.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("unmarshal audit event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
