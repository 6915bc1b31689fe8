package inventory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/migrator/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type stockRepoPG struct{ pool *pgxpool.Pool }

func NewStockRepoPG(pool *pgxpool.Pool) Repository {
	return &stockRepoPG{pool: pool}
}

func (r *stockRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const createStockTable = `
CREATE TABLE IF NOT EXISTS inventory.inventory_stocks (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	store_name VARCHAR(255) NOT NULL,
	item_name VARCHAR(255) NOT NULL,
	quantity BIGINT NOT NULL DEFAULT 0,
	reorder_point BIGINT NOT NULL DEFAULT 0,
	status VARCHAR(50) DEFAULT 'ACTIVE',
	created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE,
	CONSTRAINT uk_store_item UNIQUE (store_name, item_name)
)`

func (r *stockRepoPG) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{
		`CREATE SCHEMA IF NOT EXISTS inventory`,
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
		createStockTable,
	} {
		if _, err := r.conn(ctx).Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure inventory.inventory_stocks: %w", err)
		}
	}
	return nil
}

func (r *stockRepoPG) Exists(ctx context.Context, storeName, itemName string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM inventory.inventory_stocks
			WHERE store_name = $1 AND item_name = $2)`,
		storeName, itemName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check stock %s/%s: %w", storeName, itemName, err)
	}
	return exists, nil
}

func (r *stockRepoPG) Insert(ctx context.Context, row *StockRow) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO inventory.inventory_stocks (
			store_name, item_name, quantity, reorder_point, status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6)`,
		row.StoreName, row.ItemName, row.Quantity, row.ReorderPoint, row.Status, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert stock %s/%s: %w", row.StoreName, row.ItemName, err)
	}
	return nil
}
