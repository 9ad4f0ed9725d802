package projections

import (
	"context"
	"errors"
	"time"

	"garage/internal/domain/availability"
	"garage/internal/domain/closeddate"
)

// AvailabilityClosedDateStore defines the closed-date reads needed by the calendar projection.
type AvailabilityClosedDateStore interface {
	List(ctx context.Context) ([]closeddate.ClosedDate, error)
}

// GetAvailabilityQuery carries the inclusive date range to resolve.
type GetAvailabilityQuery struct {
	Start time.Time
	End   time.Time
}

// GetAvailabilityDeps holds dependencies for the calendar projection.
type GetAvailabilityDeps struct {
	RequestStore    FilterRequestStore
	ClosedDateStore AvailabilityClosedDateStore
}

var ErrInvalidRange = errors.New("start date must not be after end date")

// QueryGetAvailability returns every unavailable date in the inclusive range,
// either closed by the garage or booked by an accepted request.
// PRE: Start and End are non-zero and Start <= End
// POST: Returned dates are normalized to midnight UTC, ascending
func QueryGetAvailability(ctx context.Context, query GetAvailabilityQuery, deps GetAvailabilityDeps) ([]time.Time, error) {
	if query.Start.IsZero() || query.End.IsZero() {
		return nil, ErrInvalidRange
	}
	if query.End.Before(query.Start) && !availability.SameDay(query.Start, query.End) {
		return nil, ErrInvalidRange
	}

	requests, err := deps.RequestStore.List(ctx)
	if err != nil {
		return nil, err
	}
	closed, err := deps.ClosedDateStore.List(ctx)
	if err != nil {
		return nil, err
	}
	return availability.Unavailable(query.Start, query.End, requests, closed), nil
}

// QueryGetBookedDates returns the distinct days holding at least one accepted
// request, ascending. The public calendar uses this to mark taken days.
func QueryGetBookedDates(ctx context.Context, deps GetAvailabilityDeps) ([]time.Time, error) {
	requests, err := deps.RequestStore.List(ctx)
	if err != nil {
		return nil, err
	}
	return availability.BookedDates(requests), nil
}
