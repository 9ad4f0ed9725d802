package availability

import (
	"sort"
	"time"

	"garage/internal/domain/closeddate"
	"garage/internal/domain/request"
)

// State classifies a calendar day for booking purposes.
type State string

const (
	StateOpen   State = "open"
	StateBooked State = "booked"
	StateClosed State = "closed"
)

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StateOf derives the availability of a date from snapshots of the request
// and closed-date collections. It holds no state of its own.
//
// Precedence is closed > booked > open: an explicitly closed day reports
// closed even when accepted bookings exist on it, since closing is an
// administrative override.
// INVARIANT: inputs are not mutated
func StateOf(date time.Time, requests []request.MaintenanceRequest, closed []closeddate.ClosedDate) State {
	for _, cd := range closed {
		if cd.Matches(date) {
			return StateClosed
		}
	}
	for _, r := range requests {
		if r.IsAccepted() && SameDay(r.PreferredDate, date) {
			return StateBooked
		}
	}
	return StateOpen
}

// Unavailable returns every date in the inclusive range [start, end] that is
// not open, in ascending order. Used to render the admin calendar and to
// block public intake.
// PRE: start and end are valid dates
// POST: returned dates are normalized to midnight UTC
func Unavailable(start, end time.Time, requests []request.MaintenanceRequest, closed []closeddate.ClosedDate) []time.Time {
	var dates []time.Time
	for d := dayOf(start); !d.After(dayOf(end)); d = d.AddDate(0, 0, 1) {
		if StateOf(d, requests, closed) != StateOpen {
			dates = append(dates, d)
		}
	}
	return dates
}

// BookedDates returns the distinct days carrying at least one accepted
// request, in ascending order.
// INVARIANT: inputs are not mutated
func BookedDates(requests []request.MaintenanceRequest) []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, r := range requests {
		if !r.IsAccepted() {
			continue
		}
		d := dayOf(r.PreferredDate)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// dayOf normalizes a time to midnight UTC of its calendar day.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
