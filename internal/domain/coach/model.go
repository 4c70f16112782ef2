package coach

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// MaxNameLength bounds the coach name.
const MaxNameLength = 120

// Domain errors
var (
	ErrEmptyName    = errors.New("coach name cannot be empty")
	ErrInvalidEmail = errors.New("coach email is not a valid address")
)

// Coach runs classes; the coach week view filters boards by coach.
type Coach struct {
	ID     string
	Name   string
	Email  string // optional
	Active bool
}

// Validate checks if the Coach has valid data.
// PRE: Coach struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Coach) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return fmt.Errorf("coach name cannot exceed %d characters", MaxNameLength)
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return ErrInvalidEmail
		}
	}
	return nil
}
