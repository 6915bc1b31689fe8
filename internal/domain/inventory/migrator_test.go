package inventory

import (
	"context"
	"database/sql"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hms/migrator/internal/legacy"
	"github.com/hms/migrator/internal/migrate"
)

type mockSource struct {
	rows       []legacy.StoreStock
	fetchCalls int
}

func (s *mockSource) StoreStocks(_ context.Context, limit, offset int) ([]legacy.StoreStock, error) {
	s.fetchCalls++
	if offset >= len(s.rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.rows) {
		end = len(s.rows)
	}
	return s.rows[offset:end], nil
}

type stockKey struct{ store, item string }

type mockRepo struct {
	ensured bool
	rows    map[stockKey]*StockRow
}

func newMockRepo() *mockRepo {
	return &mockRepo{rows: make(map[stockKey]*StockRow)}
}

func (r *mockRepo) EnsureSchema(context.Context) error {
	r.ensured = true
	return nil
}

func (r *mockRepo) Exists(_ context.Context, storeName, itemName string) (bool, error) {
	_, ok := r.rows[stockKey{storeName, itemName}]
	return ok, nil
}

func (r *mockRepo) Insert(_ context.Context, row *StockRow) error {
	r.rows[stockKey{row.StoreName, row.ItemName}] = row
	return nil
}

func newTestMigrator(src *mockSource, repo *mockRepo) *Migrator {
	return &Migrator{
		src:  src,
		repo: repo,
		runTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
		pageSize: 2,
		log:      zerolog.Nop(),
	}
}

func stock(store, item string, qty, reorder int64) legacy.StoreStock {
	return legacy.StoreStock{
		StoreName:    sql.NullString{String: store, Valid: store != ""},
		ItemName:     sql.NullString{String: item, Valid: item != ""},
		Quantity:     sql.NullInt64{Int64: qty, Valid: true},
		ReorderPoint: sql.NullInt64{Int64: reorder, Valid: true},
	}
}

func TestMigrateStocks_CopiesRows(t *testing.T) {
	src := &mockSource{rows: []legacy.StoreStock{
		stock("Main Store", "Paracetamol", 120, 20),
		stock("Main Store", "Gauze", 40, 10),
		stock("Sub Store", "Paracetamol", 15, 5),
	}}
	repo := newMockRepo()
	m := newTestMigrator(src, repo)

	summary, err := m.MigrateStocks(context.Background())
	if err != nil {
		t.Fatalf("MigrateStocks: %v", err)
	}
	if !repo.ensured {
		t.Error("schema was not ensured")
	}
	if summary.TotalMigrated != 3 || summary.SkippedCount != 0 {
		t.Fatalf("got migrated=%d skipped=%d, want 3/0", summary.TotalMigrated, summary.SkippedCount)
	}

	row := repo.rows[stockKey{"Main Store", "Paracetamol"}]
	if row == nil {
		t.Fatal("Main Store/Paracetamol not inserted")
	}
	if row.Quantity != 120 || row.ReorderPoint != 20 || row.Status != "ACTIVE" {
		t.Errorf("row = %+v", row)
	}
}

func TestMigrateStocks_SecondRunSkipsEverything(t *testing.T) {
	src := &mockSource{rows: []legacy.StoreStock{
		stock("Main Store", "Paracetamol", 120, 20),
		stock("Sub Store", "Gauze", 40, 10),
	}}
	repo := newMockRepo()
	m := newTestMigrator(src, repo)

	if _, err := m.MigrateStocks(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	summary, err := m.MigrateStocks(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.TotalMigrated != 0 || summary.SkippedCount != 2 {
		t.Fatalf("got migrated=%d skipped=%d, want 0/2", summary.TotalMigrated, summary.SkippedCount)
	}
	for _, sk := range summary.SkippedItems {
		if sk.Reason != migrate.ReasonDuplicate {
			t.Errorf("reason = %q, want duplicate", sk.Reason)
		}
	}
}

func TestMigrateStocks_SkipsNamelessRows(t *testing.T) {
	src := &mockSource{rows: []legacy.StoreStock{
		stock("", "Orphan Item", 5, 1),
		stock("Orphan Store", "", 5, 1),
		stock("Main Store", "Gauze", 40, 10),
	}}
	repo := newMockRepo()
	m := newTestMigrator(src, repo)

	summary, err := m.MigrateStocks(context.Background())
	if err != nil {
		t.Fatalf("MigrateStocks: %v", err)
	}
	if summary.TotalMigrated != 1 || summary.SkippedCount != 2 {
		t.Fatalf("got migrated=%d skipped=%d, want 1/2", summary.TotalMigrated, summary.SkippedCount)
	}
	for _, sk := range summary.SkippedItems {
		if sk.Reason != migrate.ReasonMissingFields {
			t.Errorf("reason = %q, want missing fields", sk.Reason)
		}
	}
}

func TestMigrateStocks_PaginationTerminates(t *testing.T) {
	src := &mockSource{rows: []legacy.StoreStock{
		stock("S", "A", 1, 1),
		stock("S", "B", 1, 1),
		stock("S", "C", 1, 1),
		stock("S", "D", 1, 1),
	}}
	m := newTestMigrator(src, newMockRepo())

	if _, err := m.MigrateStocks(context.Background()); err != nil {
		t.Fatalf("MigrateStocks: %v", err)
	}
	if src.fetchCalls != 3 {
		t.Errorf("fetchCalls = %d, want 3", src.fetchCalls)
	}
}
