package closeddate

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrEmptyDate = errors.New("closed date cannot be zero")
	ErrNotFound  = errors.New("closed date not found")
	ErrDateTaken = errors.New("date is already closed")
)

// ClosedDate represents an administrator-designated calendar day on which no
// new bookings are accepted. At most one entry exists per calendar day.
type ClosedDate struct {
	ID   string
	Date time.Time // day granularity
}

// Validate checks if the ClosedDate has valid data.
// PRE: ClosedDate struct is populated
// POST: Returns nil if valid, error otherwise
func (c *ClosedDate) Validate() error {
	if c.Date.IsZero() {
		return ErrEmptyDate
	}
	return nil
}

// Matches returns true if the given date falls on this closed day.
// Only the calendar day is compared; time-of-day is ignored.
// INVARIANT: ClosedDate fields are not mutated
func (c *ClosedDate) Matches(date time.Time) bool {
	cy, cm, cd := c.Date.Date()
	dy, dm, dd := date.Date()
	return cy == dy && cm == dm && cd == dd
}
