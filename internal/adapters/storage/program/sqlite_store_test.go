package program_test

import (
	"context"
	"errors"
	"testing"

	"gymboard/internal/adapters/storage"
	store "gymboard/internal/adapters/storage/program"
	"gymboard/internal/adapters/storage/storagetest"
	domain "gymboard/internal/domain/program"
)

// TestSQLiteStore_RoundTrip tests save, update, list and delete.
func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewSQLiteStore(storagetest.OpenDB(t))

	for _, p := range []domain.Program{
		{ID: "p2", Name: "Kids", Type: domain.TypeKids},
		{ID: "p1", Name: "Adults", Type: domain.TypeAdults},
	} {
		if err := s.Save(ctx, p); err != nil {
			t.Fatalf("Save(%s): %v", p.ID, err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Adults" {
		t.Fatalf("List = %+v, want Adults first", list)
	}

	if err := s.Save(ctx, domain.Program{ID: "p1", Name: "Adults BJJ", Type: domain.TypeAdults}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Adults BJJ" {
		t.Errorf("Name = %q, want Adults BJJ", got.Name)
	}

	if err := s.Delete(ctx, "p2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.GetByID(ctx, "p2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByID after delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "p2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}
