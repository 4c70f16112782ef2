package term_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymboard/internal/adapters/storage"
	"gymboard/internal/adapters/storage/storagetest"
	store "gymboard/internal/adapters/storage/term"
	domain "gymboard/internal/domain/term"
)

// TestSQLiteStore_RoundTrip tests date persistence and start-date ordering.
func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewSQLiteStore(storagetest.OpenDB(t))

	t2 := domain.Term{ID: "t2", Name: "Term 2", StartDate: time.Date(2026, 4, 27, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC)}
	t1 := domain.Term{ID: "t1", Name: "Term 1", StartDate: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)}
	for _, tm := range []domain.Term{t2, t1} {
		if err := s.Save(ctx, tm); err != nil {
			t.Fatalf("Save(%s): %v", tm.ID, err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "t1" {
		t.Fatalf("List = %+v, want t1 first", list)
	}
	if !list[0].StartDate.Equal(t1.StartDate) || !list[0].EndDate.Equal(t1.EndDate) {
		t.Errorf("dates = %v..%v, want %v..%v", list[0].StartDate, list[0].EndDate, t1.StartDate, t1.EndDate)
	}

	if err := s.Delete(ctx, "t1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.GetByID(ctx, "t1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
