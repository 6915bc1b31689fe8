package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const txKey contextKey = "pg_tx"

// TxFromContext returns the transaction stored by WithTx, or nil when the
// context carries none. Repositories check this before falling back to
// their pool so that every write issued inside WithTx shares one
// transaction.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey).(pgx.Tx)
	return tx
}

// WithTx acquires a connection from the pool, begins a transaction, stores
// it in the context passed to fn, and commits on success. Any error from fn
// rolls the transaction back and is returned unchanged; the connection is
// released on every exit path. This is the page-level atomicity primitive:
// a failure anywhere inside fn leaves none of the page's writes visible.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
