package patientsearch

import (
	"context"
	"database/sql"
	"sort"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hms/migrator/internal/legacy"
	"github.com/hms/migrator/internal/migrate"
)

type mockSource struct {
	rows       []legacy.PatientSearch
	fetchCalls int
}

func (s *mockSource) PatientSearchPage(_ context.Context, limit, offset int) ([]legacy.PatientSearch, error) {
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

type mockRepo struct {
	indexed bool
	docs    map[int64]*Document
}

func newMockRepo() *mockRepo {
	return &mockRepo{docs: make(map[int64]*Document)}
}

func (r *mockRepo) EnsureIndexes(context.Context) error {
	r.indexed = true
	return nil
}

func (r *mockRepo) Exists(_ context.Context, patientID int64) (bool, error) {
	_, ok := r.docs[patientID]
	return ok, nil
}

func (r *mockRepo) Insert(_ context.Context, doc *Document) error {
	r.docs[doc.PatientID] = doc
	return nil
}

func (r *mockRepo) Count(context.Context) (int64, error) {
	return int64(len(r.docs)), nil
}

func (r *mockRepo) List(_ context.Context, limit, offset int) ([]Document, error) {
	ids := make([]int64, 0, len(r.docs))
	for id := range r.docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	docs := []Document{}
	for i, id := range ids {
		if i < offset || len(docs) >= limit {
			continue
		}
		docs = append(docs, *r.docs[id])
	}
	return docs, nil
}

func newTestMigrator(src *mockSource, repo *mockRepo) *Migrator {
	return &Migrator{src: src, repo: repo, pageSize: 2, log: zerolog.Nop()}
}

func nstr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func searchRow(id int64, identifier, fullname string) legacy.PatientSearch {
	return legacy.PatientSearch{
		PatientID:    id,
		Identifier:   nstr(identifier),
		FullName:     nstr(fullname),
		GivenName:    nstr("Jon"),
		FamilyName:   nstr("Doe"),
		Gender:       nstr("M"),
		Birthdate:    nstr("1990-01-01"),
		Age:          sql.NullInt64{Int64: 35, Valid: true},
		PersonNameID: sql.NullInt64{Int64: 77, Valid: true},
		PhoneNo:      nstr("01700000000"),
	}
}

func TestMigrateSearch_CopiesRows(t *testing.T) {
	src := &mockSource{rows: []legacy.PatientSearch{
		searchRow(1, "H001", "Jon Doe"),
		searchRow(2, "H002", "Jane Doe"),
		searchRow(3, "H003", "Jim Doe"),
	}}
	repo := newMockRepo()
	m := newTestMigrator(src, repo)

	summary, err := m.MigrateSearch(context.Background())
	if err != nil {
		t.Fatalf("MigrateSearch: %v", err)
	}
	if !repo.indexed {
		t.Error("indexes were not ensured")
	}
	if summary.TotalMigrated != 3 || summary.SkippedCount != 0 {
		t.Fatalf("got migrated=%d skipped=%d, want 3/0", summary.TotalMigrated, summary.SkippedCount)
	}

	doc := repo.docs[1]
	if doc == nil {
		t.Fatal("patient 1 not inserted")
	}
	if doc.Identifier != "H001" || doc.FullName != "Jon Doe" || doc.Age != 35 || doc.PhoneNo != "01700000000" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestMigrateSearch_SecondRunSkipsEverything(t *testing.T) {
	src := &mockSource{rows: []legacy.PatientSearch{
		searchRow(1, "H001", "Jon Doe"),
		searchRow(2, "H002", "Jane Doe"),
	}}
	repo := newMockRepo()
	m := newTestMigrator(src, repo)

	if _, err := m.MigrateSearch(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	summary, err := m.MigrateSearch(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.TotalMigrated != 0 || summary.SkippedCount != 2 {
		t.Fatalf("got migrated=%d skipped=%d, want 0/2", summary.TotalMigrated, summary.SkippedCount)
	}
	for _, sk := range summary.SkippedItems {
		if sk.Reason != migrate.ReasonDuplicate {
			t.Errorf("reason = %q", sk.Reason)
		}
	}
}

func TestMigrateSearch_PaginationTerminates(t *testing.T) {
	src := &mockSource{rows: []legacy.PatientSearch{
		searchRow(1, "A", "a"),
		searchRow(2, "B", "b"),
		searchRow(3, "C", "c"),
		searchRow(4, "D", "d"),
	}}
	m := newTestMigrator(src, newMockRepo())

	if _, err := m.MigrateSearch(context.Background()); err != nil {
		t.Fatalf("MigrateSearch: %v", err)
	}
	if src.fetchCalls != 3 {
		t.Errorf("fetchCalls = %d, want 3", src.fetchCalls)
	}
}

func TestListPatients_ReturnsMigratedDocuments(t *testing.T) {
	src := &mockSource{rows: []legacy.PatientSearch{searchRow(1, "H001", "Jon Doe")}}
	repo := newMockRepo()
	m := newTestMigrator(src, repo)

	if _, err := m.MigrateSearch(context.Background()); err != nil {
		t.Fatalf("MigrateSearch: %v", err)
	}
	patients, total, err := m.ListPatients(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("ListPatients: %v", err)
	}
	if total != 1 || len(patients) != 1 || patients[0].Identifier != "H001" {
		t.Errorf("total = %d, patients = %+v", total, patients)
	}
}
