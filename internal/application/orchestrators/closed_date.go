package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"garage/internal/domain/audit"
	"garage/internal/domain/availability"
	"garage/internal/domain/closeddate"
)

// ClosedDateStoreForOrchestrator defines the store interface needed by calendar orchestrators.
type ClosedDateStoreForOrchestrator interface {
	GetByDate(ctx context.Context, date time.Time) (closeddate.ClosedDate, error)
	Save(ctx context.Context, c closeddate.ClosedDate) error
	Delete(ctx context.Context, id string) error
}

// ToggleClosedDateInput carries input for the toggle orchestrator.
type ToggleClosedDateInput struct {
	Date       time.Time
	ActorID    string
	ActorEmail string
}

// ToggleClosedDateResult reports the calendar state after the toggle.
type ToggleClosedDateResult struct {
	Closed     bool
	ClosedDate closeddate.ClosedDate // set when Closed is true
}

// ToggleClosedDateDeps holds dependencies for ToggleClosedDate.
type ToggleClosedDateDeps struct {
	ClosedDateStore ClosedDateStoreForOrchestrator
	RequestStore    RequestStoreForOrchestrator
	AuditStore      AuditRecorder
	GenerateID      func() string
}

// ExecuteToggleClosedDate flips a calendar day between open and closed.
// Closing is permitted even when accepted bookings exist on the day; the
// bookings are untouched and the overlap is logged for the admin to resolve.
// Concurrent toggles of the same day are serialized by the unique date
// constraint: the losing insert surfaces ErrDateTaken.
// PRE: Date is non-zero
// POST: Exactly one store mutation; day is closed if it was open and open if
// it was closed
func ExecuteToggleClosedDate(ctx context.Context, input ToggleClosedDateInput, deps ToggleClosedDateDeps) (ToggleClosedDateResult, error) {
	if input.Date.IsZero() {
		return ToggleClosedDateResult{}, closeddate.ErrEmptyDate
	}

	existing, err := deps.ClosedDateStore.GetByDate(ctx, input.Date)
	switch {
	case err == nil:
		// Day is closed: reopen it.
		if err := deps.ClosedDateStore.Delete(ctx, existing.ID); err != nil {
			return ToggleClosedDateResult{}, err
		}
		slog.Info("availability_event", "event", "date_opened", "date", input.Date.Format("2006-01-02"), "actor_id", input.ActorID)
		recordAudit(ctx, deps.AuditStore, audit.NewEvent(input.ActorID, input.ActorEmail, audit.CategoryCalendar, audit.ActionOpen).
			WithResource("closed_date", existing.ID).
			WithDescription("reopened "+input.Date.Format("2006-01-02")))
		return ToggleClosedDateResult{Closed: false}, nil

	case errors.Is(err, closeddate.ErrNotFound):
		// Day is open: close it.
		cd := closeddate.ClosedDate{
			ID:   deps.GenerateID(),
			Date: input.Date,
		}
		if err := cd.Validate(); err != nil {
			return ToggleClosedDateResult{}, err
		}

		booked := acceptedCountOn(ctx, deps.RequestStore, input.Date)

		if err := deps.ClosedDateStore.Save(ctx, cd); err != nil {
			return ToggleClosedDateResult{}, err
		}
		slog.Info("availability_event", "event", "date_closed", "date", input.Date.Format("2006-01-02"),
			"accepted_bookings", booked, "actor_id", input.ActorID)
		recordAudit(ctx, deps.AuditStore, audit.NewEvent(input.ActorID, input.ActorEmail, audit.CategoryCalendar, audit.ActionClose).
			WithResource("closed_date", cd.ID).
			WithDescription(fmt.Sprintf("closed %s (%d accepted bookings on the day)", input.Date.Format("2006-01-02"), booked)))
		return ToggleClosedDateResult{Closed: true, ClosedDate: cd}, nil

	default:
		return ToggleClosedDateResult{}, err
	}
}

// acceptedCountOn counts accepted bookings on a day. Used only for the
// close-over-bookings log entry; a count failure does not block the toggle.
func acceptedCountOn(ctx context.Context, store RequestStoreForOrchestrator, date time.Time) int {
	requests, err := store.List(ctx)
	if err != nil {
		slog.Warn("booked_count_failed", "date", date.Format("2006-01-02"), "error", err)
		return 0
	}
	count := 0
	for _, r := range requests {
		if r.IsAccepted() && availability.SameDay(r.PreferredDate, date) {
			count++
		}
	}
	return count
}

// RemoveClosedDateInput carries input for deleting a closed date by ID.
type RemoveClosedDateInput struct {
	ID         string
	ActorID    string
	ActorEmail string
}

// RemoveClosedDateDeps holds dependencies for RemoveClosedDate.
type RemoveClosedDateDeps struct {
	ClosedDateStore ClosedDateStoreForOrchestrator
	AuditStore      AuditRecorder
}

// ExecuteRemoveClosedDate reopens a day by deleting its closed-date entry.
// PRE: ID is non-empty
// POST: Entry deleted, or ErrNotFound and no mutation
func ExecuteRemoveClosedDate(ctx context.Context, input RemoveClosedDateInput, deps RemoveClosedDateDeps) error {
	if input.ID == "" {
		return errors.New("closed date ID is required")
	}

	if err := deps.ClosedDateStore.Delete(ctx, input.ID); err != nil {
		return err
	}

	slog.Info("availability_event", "event", "date_opened", "closed_date_id", input.ID, "actor_id", input.ActorID)
	recordAudit(ctx, deps.AuditStore, audit.NewEvent(input.ActorID, input.ActorEmail, audit.CategoryCalendar, audit.ActionOpen).
		WithResource("closed_date", input.ID).
		WithDescription("reopened day by id"))
	return nil
}
