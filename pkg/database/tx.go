package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// Querier is the subset of sqlx operations repositories use. Both *sqlx.DB
// and *sqlx.Tx satisfy it, so repository methods work unchanged inside and
// outside a transaction.
type Querier interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

// InTx executes fn inside a transaction and stores the transaction in the
// context, so repository calls made through Q pick it up. Multi-record
// operations (batch writes + ledger + movement) must go through this so
// either all writes land or none do. If the context already carries a
// transaction, fn joins it instead of opening a nested one.
func (db *DB) InTx(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}
	return db.Transaction(ctx, func(tx *sqlx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Q returns the transaction bound to the context when one is present,
// otherwise the underlying connection pool.
func (db *DB) Q(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db.DB
}
