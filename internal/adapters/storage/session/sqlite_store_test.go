package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymboard/internal/adapters/storage"
	store "gymboard/internal/adapters/storage/session"
	"gymboard/internal/adapters/storage/storagetest"
	domain "gymboard/internal/domain/session"
)

func day(s string) time.Time {
	d, _ := time.Parse(domain.DateFormat, s)
	return d
}

func seeded(t *testing.T) *store.SQLiteStore {
	t.Helper()
	db := storagetest.OpenDB(t)
	storagetest.MustExec(t, db, "INSERT INTO program (id, name, type) VALUES ('p1', 'Adults', 'adults')")
	storagetest.MustExec(t, db, "INSERT INTO class_type (id, program_id, name) VALUES ('gi', 'p1', 'Gi')")
	s := store.NewSQLiteStore(db)
	for _, sess := range []domain.Session{
		{ID: "a", ClassTypeID: "gi", Date: day("2026-03-02"), StartTime: "18:00", EndTime: "19:00", Status: domain.StatusScheduled},
		{ID: "b", ScheduleID: "s1", ClassTypeID: "gi", CoachID: "c1", Date: day("2026-03-04"), StartTime: "06:00", EndTime: "07:00", Status: domain.StatusCancelled, Note: "coach away"},
		{ID: "c", ClassTypeID: "gi", Date: day("2026-03-02"), StartTime: "07:00", EndTime: "08:00", Status: domain.StatusScheduled},
		{ID: "d", ClassTypeID: "gi", Date: day("2026-03-09"), StartTime: "07:00", EndTime: "08:00", Status: domain.StatusScheduled},
	} {
		if err := s.Save(context.Background(), sess); err != nil {
			t.Fatalf("Save(%s): %v", sess.ID, err)
		}
	}
	return s
}

// TestSQLiteStore_ListBetween tests the half-open date range and ordering.
func TestSQLiteStore_ListBetween(t *testing.T) {
	s := seeded(t)
	got, err := s.ListBetween(context.Background(), day("2026-03-02"), day("2026-03-09"))
	if err != nil {
		t.Fatalf("ListBetween: %v", err)
	}
	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("got %d sessions, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("session[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
	if got[2].Note != "coach away" || !got[2].Cancelled() || got[2].CoachID != "c1" || got[2].DateKey() != "2026-03-04" {
		t.Errorf("override fields not preserved: %+v", got[2])
	}
}

// TestSQLiteStore_Pagination tests CountBetween and ListPage.
func TestSQLiteStore_Pagination(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	from, to := day("2026-03-01"), day("2026-04-01")

	n, err := s.CountBetween(ctx, from, to)
	if err != nil {
		t.Fatalf("CountBetween: %v", err)
	}
	if n != 4 {
		t.Errorf("CountBetween = %d, want 4", n)
	}

	page, err := s.ListPage(ctx, from, to, 2, 2)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if len(page) != 2 || page[0].ID != "b" || page[1].ID != "d" {
		t.Errorf("page 2 = %+v", page)
	}
}

// TestSQLiteStore_GetAndDelete tests lookup and not-found after delete.
func TestSQLiteStore_GetAndDelete(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	if _, err := s.GetByID(ctx, "a"); err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.GetByID(ctx, "a"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// TestSQLiteStore_OverrideUnique tests that a schedule has at most one override per date.
func TestSQLiteStore_OverrideUnique(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	got, err := s.GetOverride(ctx, "s1", day("2026-03-04"))
	if err != nil {
		t.Fatalf("GetOverride: %v", err)
	}
	if got.ID != "b" {
		t.Errorf("GetOverride = %s, want b", got.ID)
	}
	if _, err := s.GetOverride(ctx, "s1", day("2026-03-11")); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetOverride on a free date: error = %v, want ErrNotFound", err)
	}

	dup := domain.Session{ID: "moved", ScheduleID: "s1", ClassTypeID: "gi", Date: day("2026-03-04"), StartTime: "19:00", EndTime: "20:00", Status: domain.StatusScheduled}
	if err := s.Save(ctx, dup); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("second override: error = %v, want ErrConflict", err)
	}

	// updating the existing override in place is allowed
	b := got
	b.Status = domain.StatusScheduled
	if err := s.Save(ctx, b); err != nil {
		t.Errorf("update override: %v", err)
	}

	// one-off sessions share an empty schedule id and are not constrained
	oneOff := domain.Session{ID: "e", ClassTypeID: "gi", Date: day("2026-03-02"), StartTime: "18:00", EndTime: "19:00", Status: domain.StatusScheduled}
	if err := s.Save(ctx, oneOff); err != nil {
		t.Errorf("one-off on a busy date: %v", err)
	}
}

// TestSQLiteStore_CountReferences tests the coach and class type usage counts.
func TestSQLiteStore_CountReferences(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	n, err := s.CountByCoachID(ctx, "c1")
	if err != nil {
		t.Fatalf("CountByCoachID: %v", err)
	}
	if n != 1 {
		t.Errorf("CountByCoachID(c1) = %d, want 1", n)
	}
	if n, _ := s.CountByCoachID(ctx, "nobody"); n != 0 {
		t.Errorf("CountByCoachID(nobody) = %d, want 0", n)
	}
	if n, _ := s.CountByClassTypeID(ctx, "gi"); n != 4 {
		t.Errorf("CountByClassTypeID(gi) = %d, want 4", n)
	}
}
