package availability_test

import (
	"testing"
	"time"

	"garage/internal/domain/availability"
	"garage/internal/domain/closeddate"
	"garage/internal/domain/request"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func accepted(id string, date time.Time) request.MaintenanceRequest {
	return request.MaintenanceRequest{
		ID:            id,
		Name:          "Customer",
		Phone:         "0800000000",
		CarModel:      "Honda City",
		LicensePlate:  "XYZ-5678",
		PreferredDate: date,
		ServiceType:   "Oil Change",
		Status:        request.StatusAccepted,
	}
}

// TestStateOf tests the open/booked/closed derivation.
func TestStateOf(t *testing.T) {
	d := day(2025, 5, 1)
	requests := []request.MaintenanceRequest{accepted("r1", d)}
	closed := []closeddate.ClosedDate{{ID: "c1", Date: day(2025, 5, 2)}}

	tests := []struct {
		name     string
		date     time.Time
		requests []request.MaintenanceRequest
		closed   []closeddate.ClosedDate
		want     availability.State
	}{
		{"no bookings, no closures", day(2025, 5, 3), requests, closed, availability.StateOpen},
		{"accepted booking", d, requests, closed, availability.StateBooked},
		{"explicitly closed", day(2025, 5, 2), requests, closed, availability.StateClosed},
		{"pending booking leaves day open", d, []request.MaintenanceRequest{
			{ID: "r2", PreferredDate: d, Status: request.StatusPending},
		}, nil, availability.StateOpen},
		{"rejected booking leaves day open", d, []request.MaintenanceRequest{
			{ID: "r3", PreferredDate: d, Status: request.StatusRejected},
		}, nil, availability.StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := availability.StateOf(tt.date, tt.requests, tt.closed); got != tt.want {
				t.Errorf("StateOf(%v) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

// TestStateOf_ClosedPrecedence verifies that closed wins over booked.
func TestStateOf_ClosedPrecedence(t *testing.T) {
	d := day(2025, 5, 1)
	requests := []request.MaintenanceRequest{accepted("r1", d)}
	closed := []closeddate.ClosedDate{{ID: "c1", Date: d}}

	if got := availability.StateOf(d, requests, closed); got != availability.StateClosed {
		t.Errorf("StateOf on booked+closed day = %v, want closed", got)
	}
}

// TestUnavailable tests the range view.
func TestUnavailable(t *testing.T) {
	requests := []request.MaintenanceRequest{
		accepted("r1", day(2025, 5, 2)),
		accepted("r2", day(2025, 5, 2)), // second booking on the same day
		accepted("r3", day(2025, 5, 10)), // outside the queried range
	}
	closed := []closeddate.ClosedDate{{ID: "c1", Date: day(2025, 5, 4)}}

	got := availability.Unavailable(day(2025, 5, 1), day(2025, 5, 5), requests, closed)
	want := []time.Time{day(2025, 5, 2), day(2025, 5, 4)}
	if len(got) != len(want) {
		t.Fatalf("Unavailable returned %d dates, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("Unavailable[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// TestBookedDates tests distinct accepted-day extraction.
func TestBookedDates(t *testing.T) {
	requests := []request.MaintenanceRequest{
		accepted("r1", day(2025, 5, 9)),
		accepted("r2", day(2025, 5, 2)),
		accepted("r3", day(2025, 5, 2)),
		{ID: "r4", PreferredDate: day(2025, 5, 3), Status: request.StatusPending},
	}

	got := availability.BookedDates(requests)
	want := []time.Time{day(2025, 5, 2), day(2025, 5, 9)}
	if len(got) != len(want) {
		t.Fatalf("BookedDates returned %d dates, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("BookedDates[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
