package orchestrators

import (
	"context"
	"log/slog"

	"gymboard/internal/domain/classtype"
	"gymboard/internal/domain/program"

	"github.com/google/uuid"
)

// ProgramStoreForSeed defines the store interface needed by SeedPrograms.
type ProgramStoreForSeed interface {
	Save(ctx context.Context, p program.Program) error
	List(ctx context.Context) ([]program.Program, error)
}

// ClassTypeStoreForSeed defines the store interface needed by SeedPrograms.
type ClassTypeStoreForSeed interface {
	Save(ctx context.Context, ct classtype.ClassType) error
}

// SeedProgramsDeps holds dependencies for SeedPrograms.
type SeedProgramsDeps struct {
	ProgramStore   ProgramStoreForSeed
	ClassTypeStore ClassTypeStoreForSeed
	NewID          func() string // defaults to uuid.NewString
}

// SeedResult reports what ExecuteSeedPrograms created.
type SeedResult struct {
	Programs   int
	ClassTypes int
}

// ExecuteSeedPrograms creates default Programs and ClassTypes if none exist.
// PRE: deps stores are non-nil
// POST: Returns zero counts when programs already exist
func ExecuteSeedPrograms(ctx context.Context, deps SeedProgramsDeps) (SeedResult, error) {
	existing, err := deps.ProgramStore.List(ctx)
	if err != nil {
		return SeedResult{}, err
	}
	if len(existing) > 0 {
		return SeedResult{}, nil // Already seeded
	}
	newID := deps.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	adultsID, kidsID, openID := newID(), newID(), newID()
	programs := []program.Program{
		{ID: adultsID, Name: "Adults", Type: program.TypeAdults},
		{ID: kidsID, Name: "Kids", Type: program.TypeKids},
		{ID: openID, Name: "Open Mat", Type: program.TypeOpen},
	}
	for _, p := range programs {
		if err := deps.ProgramStore.Save(ctx, p); err != nil {
			return SeedResult{}, err
		}
	}

	classTypes := []classtype.ClassType{
		{ID: newID(), ProgramID: adultsID, Name: "Fundamentals", Level: "Beginner", Color: "#1f77b4", Description: "Core positions and escapes. **No experience needed.**"},
		{ID: newID(), ProgramID: adultsID, Name: "No-Gi", Level: "All levels", Color: "#ff7f0e", Description: "Rashguard and shorts."},
		{ID: newID(), ProgramID: adultsID, Name: "Competition", Level: "Advanced", Color: "#d62728", Description: "Hard rounds. Coach approval required."},
		{ID: newID(), ProgramID: openID, Name: "Open Mat", Level: "All levels", Color: "#2ca02c"},
		{ID: newID(), ProgramID: kidsID, Name: "Kids Fundamentals", Level: "5-9 years", Color: "#9467bd", Capacity: 20},
		{ID: newID(), ProgramID: kidsID, Name: "Kids Advanced", Level: "10-15 years", Color: "#8c564b", Capacity: 20},
	}
	for _, ct := range classTypes {
		if err := deps.ClassTypeStore.Save(ctx, ct); err != nil {
			return SeedResult{}, err
		}
	}

	slog.Info("seed_event", "event", "programs_seeded", "programs", len(programs), "class_types", len(classTypes))
	return SeedResult{Programs: len(programs), ClassTypes: len(classTypes)}, nil
}
