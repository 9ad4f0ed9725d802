package projections

import (
	"context"
	"errors"
	"testing"
	"time"

	"garage/internal/domain/closeddate"
	"garage/internal/domain/request"
)

// TestQueryGetAvailability tests the unavailable-range calculation.
func TestQueryGetAvailability(t *testing.T) {
	requests := &mockRequestStore{requests: []request.MaintenanceRequest{
		testRequest("r1", "Alice", "021", "AAA-111", request.StatusAccepted, day(11)),
		testRequest("r2", "Bob", "022", "BBB-222", request.StatusPending, day(12)), // pending leaves the day open
	}}
	closed := &mockClosedDateStore{dates: []closeddate.ClosedDate{
		{ID: "c1", Date: day(13)},
	}}

	got, err := QueryGetAvailability(context.Background(), GetAvailabilityQuery{
		Start: day(10),
		End:   day(14),
	}, GetAvailabilityDeps{RequestStore: requests, ClosedDateStore: closed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []time.Time{day(11), day(13)}
	if len(got) != len(want) {
		t.Fatalf("got %d unavailable dates, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("unavailable[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// TestQueryGetAvailability_InvalidRange tests range validation.
func TestQueryGetAvailability_InvalidRange(t *testing.T) {
	deps := GetAvailabilityDeps{RequestStore: &mockRequestStore{}, ClosedDateStore: &mockClosedDateStore{}}

	_, err := QueryGetAvailability(context.Background(), GetAvailabilityQuery{Start: day(14), End: day(10)}, deps)
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange for reversed range, got %v", err)
	}
	_, err = QueryGetAvailability(context.Background(), GetAvailabilityQuery{End: day(10)}, deps)
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange for zero start, got %v", err)
	}
}

// TestQueryGetBookedDates tests distinct accepted days, ascending.
func TestQueryGetBookedDates(t *testing.T) {
	requests := &mockRequestStore{requests: []request.MaintenanceRequest{
		testRequest("r1", "Alice", "021", "AAA-111", request.StatusAccepted, day(12)),
		testRequest("r2", "Bob", "022", "BBB-222", request.StatusAccepted, day(12)), // same day, deduplicated
		testRequest("r3", "Carol", "023", "CCC-333", request.StatusAccepted, day(10)),
		testRequest("r4", "Dave", "024", "DDD-444", request.StatusRejected, day(11)),
	}}

	got, err := QueryGetBookedDates(context.Background(), GetAvailabilityDeps{RequestStore: requests})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []time.Time{day(10), day(12)}
	if len(got) != len(want) {
		t.Fatalf("got %d booked dates, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("booked[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
