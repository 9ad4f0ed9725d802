package projections

import (
	"context"
	"time"

	"garage/internal/domain/availability"
	"garage/internal/domain/request"
)

// SummaryResult carries the admin dashboard headline numbers.
type SummaryResult struct {
	TodayRequests   int            `json:"todayRequests"`
	PendingRequests int            `json:"pendingRequests"`
	StatusBreakdown map[string]int `json:"statusBreakdown"`
}

// GetSummaryDeps holds dependencies for the summary projection.
type GetSummaryDeps struct {
	RequestStore FilterRequestStore
}

// QueryGetSummary aggregates request counts for the dashboard.
// TodayRequests counts requests submitted on the same calendar day as now.
// PRE: none
// POST: StatusBreakdown has an entry for every valid status, including zeros
func QueryGetSummary(ctx context.Context, deps GetSummaryDeps, now time.Time) (SummaryResult, error) {
	requests, err := deps.RequestStore.List(ctx)
	if err != nil {
		return SummaryResult{}, err
	}
	return Summarize(requests, now), nil
}

// Summarize computes the summary over a snapshot. Pure.
func Summarize(requests []request.MaintenanceRequest, now time.Time) SummaryResult {
	result := SummaryResult{StatusBreakdown: make(map[string]int, len(request.ValidStatuses))}
	for _, s := range request.ValidStatuses {
		result.StatusBreakdown[s] = 0
	}

	for _, r := range requests {
		result.StatusBreakdown[r.Status]++
		if r.IsPending() {
			result.PendingRequests++
		}
		if availability.SameDay(r.CreatedAt, now) {
			result.TodayRequests++
		}
	}
	return result
}
