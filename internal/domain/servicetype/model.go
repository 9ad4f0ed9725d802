package servicetype

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	ErrEmptyName = errors.New("service type name cannot be empty")
	ErrNotFound  = errors.New("service type not found")
)

// Max length constants.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 1000
)

// ServiceType represents a named category of maintenance work
// (e.g. Oil Change, Brake Service).
type ServiceType struct {
	ID          string
	Name        string
	Description string // optional
}

// Validate checks if the ServiceType has valid data.
// PRE: ServiceType struct is populated
// POST: Returns nil if valid, error otherwise
func (s *ServiceType) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if len(s.Name) > MaxNameLength {
		return fmt.Errorf("service type name cannot exceed %d characters", MaxNameLength)
	}
	if len(s.Description) > MaxDescriptionLength {
		return fmt.Errorf("service type description cannot exceed %d characters", MaxDescriptionLength)
	}
	return nil
}
