package program

import (
	"errors"
	"fmt"
	"strings"
)

// Program type constants
const (
	TypeAdults = "adults"
	TypeKids   = "kids"
	TypeOpen   = "open" // open mat, conditioning and other all-ages sessions
)

// ValidTypes contains all valid program types.
var ValidTypes = []string{TypeAdults, TypeKids, TypeOpen}

// MaxNameLength bounds the program name.
const MaxNameLength = 100

// Domain errors
var (
	ErrEmptyName   = errors.New("program name cannot be empty")
	ErrInvalidType = errors.New("program type must be 'adults', 'kids' or 'open'")
)

// Program is a top-level grouping of class types on the timetable.
type Program struct {
	ID   string
	Name string
	Type string
}

// Validate checks if the Program has valid data.
// PRE: Program struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Program) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > MaxNameLength {
		return fmt.Errorf("program name cannot exceed %d characters", MaxNameLength)
	}
	if !isValidType(p.Type) {
		return ErrInvalidType
	}
	return nil
}

func isValidType(t string) bool {
	for _, v := range ValidTypes {
		if v == t {
			return true
		}
	}
	return false
}
