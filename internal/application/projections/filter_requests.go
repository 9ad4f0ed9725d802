package projections

import (
	"context"
	"strings"
	"time"

	"garage/internal/domain/availability"
	"garage/internal/domain/request"
)

// FilterRequestStore defines the request store interface needed by projections.
type FilterRequestStore interface {
	List(ctx context.Context) ([]request.MaintenanceRequest, error)
}

// FilterRequestsQuery carries the admin dashboard filter criteria.
// A zero Date means no date filtering.
type FilterRequestsQuery struct {
	SearchText string
	Date       time.Time
}

// FilterRequestsResult partitions the matching requests for the dashboard.
// Rejected requests are excluded from both views.
type FilterRequestsResult struct {
	Pending  []request.MaintenanceRequest
	Accepted []request.MaintenanceRequest
}

// FilterRequestsDeps holds dependencies for the filter projection.
type FilterRequestsDeps struct {
	RequestStore FilterRequestStore
}

// QueryFilterRequests returns pending and accepted requests matching the
// filter. Text matches when any of name, car model or license plate contains
// the search text case-insensitively, or the phone number contains it
// case-sensitively. A set date additionally restricts to that calendar day.
// PRE: none
// POST: Result holds only pending and accepted requests matching all criteria
func QueryFilterRequests(ctx context.Context, query FilterRequestsQuery, deps FilterRequestsDeps) (FilterRequestsResult, error) {
	requests, err := deps.RequestStore.List(ctx)
	if err != nil {
		return FilterRequestsResult{}, err
	}

	var result FilterRequestsResult
	for _, r := range requests {
		if !MatchesFilter(r, query.SearchText, query.Date) {
			continue
		}
		switch r.Status {
		case request.StatusPending:
			result.Pending = append(result.Pending, r)
		case request.StatusAccepted:
			result.Accepted = append(result.Accepted, r)
		}
	}
	return result, nil
}

// MatchesFilter reports whether a single request satisfies the filter.
// Pure; operates on the given snapshot only.
func MatchesFilter(r request.MaintenanceRequest, searchText string, date time.Time) bool {
	if !matchesSearch(r, searchText) {
		return false
	}
	if !date.IsZero() && !availability.SameDay(r.PreferredDate, date) {
		return false
	}
	return true
}

func matchesSearch(r request.MaintenanceRequest, searchText string) bool {
	if searchText == "" {
		return true
	}
	lower := strings.ToLower(searchText)
	if strings.Contains(strings.ToLower(r.Name), lower) {
		return true
	}
	if strings.Contains(strings.ToLower(r.CarModel), lower) {
		return true
	}
	if strings.Contains(strings.ToLower(r.LicensePlate), lower) {
		return true
	}
	// Phone numbers are matched verbatim.
	return strings.Contains(r.Phone, searchText)
}
