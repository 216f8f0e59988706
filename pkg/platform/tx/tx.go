// Package tx carries a *sql.Tx through context so stores can join a
// caller-owned transaction. The audit outbox uses it to make event appends
// atomic with the caller's own writes.
package tx

import (
	"context"
	"database/sql"
)

type key struct{}

// WithTx returns a context whose database writes should join tx. A nil tx
// leaves the context unchanged.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, key{}, tx)
}

// From reports the transaction attached to ctx, if any. Stores fall back to
// their own *sql.DB when none is attached.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(key{}).(*sql.Tx)
	return tx, ok
}
