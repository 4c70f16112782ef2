package classtype_test

import (
	"context"
	"errors"
	"testing"

	"gymboard/internal/adapters/storage"
	store "gymboard/internal/adapters/storage/classtype"
	"gymboard/internal/adapters/storage/storagetest"
	domain "gymboard/internal/domain/classtype"
)

// TestSQLiteStore_RoundTrip tests that every column survives a save and reload.
func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := storagetest.OpenDB(t)
	storagetest.MustExec(t, db, "INSERT INTO program (id, name, type) VALUES ('p1', 'Adults', 'adults'), ('p2', 'Kids', 'kids')")
	s := store.NewSQLiteStore(db)

	want := domain.ClassType{
		ID: "ct1", ProgramID: "p1", Name: "Nogi",
		Description: "**Bring** a rashguard", Level: "All levels", Color: "#1f77b4", Capacity: 24,
	}
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, domain.ClassType{ID: "ct2", ProgramID: "p2", Name: "Kids Fundamentals"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.GetByID(ctx, "ct1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != want {
		t.Errorf("GetByID = %+v, want %+v", got, want)
	}

	byProgram, err := s.ListByProgramID(ctx, "p2")
	if err != nil {
		t.Fatalf("ListByProgramID: %v", err)
	}
	if len(byProgram) != 1 || byProgram[0].ID != "ct2" {
		t.Errorf("ListByProgramID(p2) = %+v", byProgram)
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].Name != "Kids Fundamentals" {
		t.Errorf("List = %+v, want name order", all)
	}

	if _, err := s.GetByID(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByID(nope) error = %v, want ErrNotFound", err)
	}
}
