package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hms/migrator/internal/config"
	"github.com/hms/migrator/internal/legacy"
	"github.com/hms/migrator/internal/migrate"
	"github.com/hms/migrator/internal/platform/db"
)

type source interface {
	StoreStocks(ctx context.Context, limit, offset int) ([]legacy.StoreStock, error)
}

// Migrator copies legacy store-level stock rows into the inventory schema.
type Migrator struct {
	src      source
	repo     Repository
	runTx    func(ctx context.Context, fn func(ctx context.Context) error) error
	pageSize int
	log      zerolog.Logger
}

func NewMigrator(src *legacy.Reader, repo Repository, pool *pgxpool.Pool, cfg *config.Config, log zerolog.Logger) *Migrator {
	return &Migrator{
		src:  src,
		repo: repo,
		runTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		},
		pageSize: cfg.PageSize,
		log:      log.With().Str("flow", "inventory").Logger(),
	}
}

// MigrateStocks pages over the legacy store/drug quantities and inserts one
// row per (store, item) pair. Rows without both names are skipped, as are
// pairs already present in the target; each page commits atomically.
func (m *Migrator) MigrateStocks(ctx context.Context) (*migrate.Summary, error) {
	if err := m.repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	summary := migrate.NewSummary()
	err := migrate.ForEachPage(ctx, m.pageSize, m.src.StoreStocks,
		func(ctx context.Context, page []legacy.StoreStock) error {
			return m.runTx(ctx, func(ctx context.Context) error {
				for _, row := range page {
					if err := m.migrateOne(ctx, row, summary); err != nil {
						return err
					}
				}
				return nil
			})
		})
	if err != nil {
		m.log.Error().Err(err).
			Int("migrated", summary.TotalMigrated).
			Int("skipped", summary.SkippedCount).
			Msg("inventory migration aborted")
		return nil, err
	}

	m.log.Info().
		Int("migrated", summary.TotalMigrated).
		Int("skipped", summary.SkippedCount).
		Msg("inventory migration finished")
	return summary, nil
}

func (m *Migrator) migrateOne(ctx context.Context, row legacy.StoreStock, summary *migrate.Summary) error {
	store := row.StoreName.String
	item := row.ItemName.String
	if store == "" || item == "" {
		summary.Skip(fmt.Sprintf("%s/%s", store, item), migrate.ReasonMissingFields)
		return nil
	}

	exists, err := m.repo.Exists(ctx, store, item)
	if err != nil {
		return err
	}
	if exists {
		summary.SkipRecord(migrate.Skip{
			Key:    item,
			Reason: migrate.ReasonDuplicate,
			Fields: map[string]string{"store": store},
		})
		return nil
	}

	if err := m.repo.Insert(ctx, &StockRow{
		StoreName:    store,
		ItemName:     item,
		Quantity:     row.Quantity.Int64,
		ReorderPoint: row.ReorderPoint.Int64,
		Status:       "ACTIVE",
		CreatedAt:    time.Now(),
	}); err != nil {
		return err
	}
	summary.Migrated()
	return nil
}
