package classtype

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Domain errors
var (
	ErrEmptyName        = errors.New("class type name cannot be empty")
	ErrEmptyProgramID   = errors.New("program ID cannot be empty")
	ErrInvalidColor     = errors.New("color must be a hex value like #1f77b4")
	ErrNegativeCapacity = errors.New("capacity cannot be negative")
)

// Max length constants.
const (
	MaxNameLength        = 200
	MaxLevelLength       = 100
	MaxDescriptionLength = 2000
)

// DefaultColor is used for board chips when a class type has no color.
const DefaultColor = "#6b7280"

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ClassType is a kind of class on the timetable (e.g. Fundamentals, Spin, HIIT).
type ClassType struct {
	ID        string
	ProgramID string
	Name      string

	// Optional metadata for board display.
	Description string // markdown
	Level       string // free-form label (e.g. Beginner, All-levels)
	Color       string // "#rrggbb"
	Capacity    int    // 0 means unlimited
}

// Validate checks if the ClassType has valid data.
// PRE: ClassType struct is populated
// POST: Returns nil if valid, error otherwise
func (c *ClassType) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return fmt.Errorf("class type name cannot exceed %d characters", MaxNameLength)
	}
	if strings.TrimSpace(c.ProgramID) == "" {
		return ErrEmptyProgramID
	}
	if len(c.Level) > MaxLevelLength {
		return fmt.Errorf("class type level cannot exceed %d characters", MaxLevelLength)
	}
	if len(c.Description) > MaxDescriptionLength {
		return fmt.Errorf("class type description cannot exceed %d characters", MaxDescriptionLength)
	}
	if c.Color != "" && !hexColor.MatchString(c.Color) {
		return ErrInvalidColor
	}
	if c.Capacity < 0 {
		return ErrNegativeCapacity
	}
	return nil
}

// DisplayColor returns the chip color, falling back to DefaultColor.
func (c *ClassType) DisplayColor() string {
	if c.Color == "" {
		return DefaultColor
	}
	return strings.ToLower(c.Color)
}
