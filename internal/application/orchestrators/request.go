package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "garage/internal/adapters/email"
	"garage/internal/domain/audit"
	"garage/internal/domain/availability"
	"garage/internal/domain/closeddate"
	"garage/internal/domain/request"
	"garage/internal/domain/servicetype"
)

// RequestStoreForOrchestrator defines the store interface needed by request orchestrators.
type RequestStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (request.MaintenanceRequest, error)
	Save(ctx context.Context, r request.MaintenanceRequest) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]request.MaintenanceRequest, error)
}

// ClosedDateLookup defines the closed-date reads needed by request orchestrators.
type ClosedDateLookup interface {
	List(ctx context.Context) ([]closeddate.ClosedDate, error)
}

// ServiceTypeLookup resolves service type names against the taxonomy.
type ServiceTypeLookup interface {
	GetByName(ctx context.Context, name string) (servicetype.ServiceType, error)
}

// AuditRecorder persists audit events. Recording is best-effort: failures are
// logged and never fail the mutation they describe.
type AuditRecorder interface {
	Save(ctx context.Context, event audit.Event) error
}

var (
	ErrDateUnavailable = errors.New("the requested date is not available for booking")
	ErrUnknownType     = errors.New("unknown service type")
)

// recordAudit saves an audit event, logging on failure.
func recordAudit(ctx context.Context, store AuditRecorder, event audit.Event) {
	if store == nil {
		return
	}
	if err := store.Save(ctx, event); err != nil {
		slog.Warn("audit_save_failed", "action", event.Action, "resource_id", event.ResourceID, "error", err)
	}
}

// notifyAdmin sends a best-effort notification email to the configured
// address. A send failure never fails the mutation it follows.
func notifyAdmin(ctx context.Context, sender emailAdapter.Sender, from, to, subject, html string) {
	if sender == nil || to == "" {
		return
	}
	if _, err := sender.Send(ctx, emailAdapter.SendRequest{
		To:      []string{to},
		From:    from,
		Subject: subject,
		HTML:    html,
	}); err != nil {
		slog.Warn("notification_send_failed", "subject", subject, "error", err)
	}
}

// --- Submit Request ---

// SubmitRequestInput carries the public intake form fields.
type SubmitRequestInput struct {
	Name          string
	Phone         string
	CarModel      string
	LicensePlate  string
	PreferredDate time.Time
	ServiceType   string
}

// SubmitRequestDeps holds dependencies for SubmitRequest.
type SubmitRequestDeps struct {
	RequestStore     RequestStoreForOrchestrator
	ClosedDateStore  ClosedDateLookup
	ServiceTypeStore ServiceTypeLookup
	EmailSender      emailAdapter.Sender
	FromAddress      string
	NotifyAddress    string
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteSubmitRequest creates a new pending maintenance request.
// PRE: contact fields are non-empty; PreferredDate is today or later and the
// day is open; ServiceType names an existing type
// POST: Request persisted in pending status, or error and nothing persisted
func ExecuteSubmitRequest(ctx context.Context, input SubmitRequestInput, deps SubmitRequestDeps) (request.MaintenanceRequest, error) {
	now := deps.Now()

	req := request.MaintenanceRequest{
		ID:            deps.GenerateID(),
		Name:          input.Name,
		Phone:         input.Phone,
		CarModel:      input.CarModel,
		LicensePlate:  input.LicensePlate,
		PreferredDate: input.PreferredDate,
		ServiceType:   input.ServiceType,
		Status:        request.StatusPending,
		CreatedAt:     now,
	}
	if err := req.Validate(); err != nil {
		return request.MaintenanceRequest{}, err
	}
	if input.ServiceType == "" {
		return request.MaintenanceRequest{}, request.ErrEmptyServiceType
	}

	if input.PreferredDate.Before(now) && !availability.SameDay(input.PreferredDate, now) {
		return request.MaintenanceRequest{}, request.ErrPastDate
	}

	if _, err := deps.ServiceTypeStore.GetByName(ctx, input.ServiceType); err != nil {
		if errors.Is(err, servicetype.ErrNotFound) {
			return request.MaintenanceRequest{}, fmt.Errorf("%w: %s", ErrUnknownType, input.ServiceType)
		}
		return request.MaintenanceRequest{}, err
	}

	// The preferred day must be open: not closed by the garage and not
	// already taken by an accepted booking.
	existing, err := deps.RequestStore.List(ctx)
	if err != nil {
		return request.MaintenanceRequest{}, err
	}
	closed, err := deps.ClosedDateStore.List(ctx)
	if err != nil {
		return request.MaintenanceRequest{}, err
	}
	if state := availability.StateOf(input.PreferredDate, existing, closed); state != availability.StateOpen {
		slog.Info("request_event", "event", "submit_rejected", "date", input.PreferredDate.Format("2006-01-02"), "state", state)
		return request.MaintenanceRequest{}, fmt.Errorf("%w: %s", ErrDateUnavailable, state)
	}

	if err := deps.RequestStore.Save(ctx, req); err != nil {
		return request.MaintenanceRequest{}, err
	}

	slog.Info("request_event", "event", "request_submitted", "request_id", req.ID,
		"date", req.PreferredDate.Format("2006-01-02"), "service_type", req.ServiceType)

	notifyAdmin(ctx, deps.EmailSender, deps.FromAddress, deps.NotifyAddress,
		"New maintenance request",
		fmt.Sprintf("<p>%s requested %s on %s (%s, plate %s).</p>",
			req.Name, req.ServiceType, req.PreferredDate.Format("2006-01-02"), req.CarModel, req.LicensePlate))

	return req, nil
}

// --- Decide Request ---

// DecideRequestInput carries input for the decide orchestrator.
type DecideRequestInput struct {
	RequestID  string
	Decision   string // accepted or rejected
	ActorID    string
	ActorEmail string
}

// DecideRequestDeps holds dependencies for DecideRequest.
type DecideRequestDeps struct {
	RequestStore  RequestStoreForOrchestrator
	AuditStore    AuditRecorder
	EmailSender   emailAdapter.Sender
	FromAddress   string
	NotifyAddress string
}

// ExecuteDecideRequest accepts or rejects a pending request.
// PRE: RequestID exists; request is pending; Decision is accepted or rejected
// POST: Status updated and persisted, or error and no mutation
func ExecuteDecideRequest(ctx context.Context, input DecideRequestInput, deps DecideRequestDeps) (request.MaintenanceRequest, error) {
	if input.RequestID == "" {
		return request.MaintenanceRequest{}, errors.New("request ID is required")
	}

	req, err := deps.RequestStore.GetByID(ctx, input.RequestID)
	if err != nil {
		return request.MaintenanceRequest{}, err
	}

	if err := req.Transition(input.Decision); err != nil {
		return request.MaintenanceRequest{}, err
	}
	if err := req.Validate(); err != nil {
		return request.MaintenanceRequest{}, err
	}

	if err := deps.RequestStore.Save(ctx, req); err != nil {
		return request.MaintenanceRequest{}, err
	}

	slog.Info("request_event", "event", "request_decided", "request_id", req.ID, "decision", req.Status, "actor_id", input.ActorID)

	action := audit.ActionAccept
	if req.Status == request.StatusRejected {
		action = audit.ActionReject
	}
	recordAudit(ctx, deps.AuditStore, audit.NewEvent(input.ActorID, input.ActorEmail, audit.CategoryRequest, action).
		WithResource("maintenance_request", req.ID).
		WithDescription(fmt.Sprintf("request for %s on %s %s", req.Name, req.PreferredDate.Format("2006-01-02"), req.Status)))

	notifyAdmin(ctx, deps.EmailSender, deps.FromAddress, deps.NotifyAddress,
		fmt.Sprintf("Maintenance request %s", req.Status),
		fmt.Sprintf("<p>The request from %s for %s was %s.</p>",
			req.Name, req.PreferredDate.Format("2006-01-02"), req.Status))

	return req, nil
}

// --- Reschedule Request ---

// RescheduleRequestInput carries input for the reschedule orchestrator.
type RescheduleRequestInput struct {
	RequestID  string
	NewDate    time.Time
	NewType    string
	ActorID    string
	ActorEmail string
}

// RescheduleRequestDeps holds dependencies for RescheduleRequest.
type RescheduleRequestDeps struct {
	RequestStore     RequestStoreForOrchestrator
	ServiceTypeStore ServiceTypeLookup
	AuditStore       AuditRecorder
	Now              func() time.Time
}

// ExecuteRescheduleRequest moves an accepted booking to a new date and type.
// PRE: RequestID exists; request is accepted; NewType names an existing type;
// NewDate is today or later
// POST: PreferredDate and ServiceType updated, status unchanged; or error
// and no mutation
func ExecuteRescheduleRequest(ctx context.Context, input RescheduleRequestInput, deps RescheduleRequestDeps) (request.MaintenanceRequest, error) {
	if input.RequestID == "" {
		return request.MaintenanceRequest{}, errors.New("request ID is required")
	}

	req, err := deps.RequestStore.GetByID(ctx, input.RequestID)
	if err != nil {
		return request.MaintenanceRequest{}, err
	}

	if input.NewType != "" {
		if _, err := deps.ServiceTypeStore.GetByName(ctx, input.NewType); err != nil {
			if errors.Is(err, servicetype.ErrNotFound) {
				return request.MaintenanceRequest{}, fmt.Errorf("%w: %s", ErrUnknownType, input.NewType)
			}
			return request.MaintenanceRequest{}, err
		}
	}

	// An empty NewType keeps the current service type.
	newType := input.NewType
	if newType == "" {
		newType = req.ServiceType
	}

	oldDate := req.PreferredDate
	if err := req.Reschedule(input.NewDate, newType, deps.Now()); err != nil {
		return request.MaintenanceRequest{}, err
	}

	if err := deps.RequestStore.Save(ctx, req); err != nil {
		return request.MaintenanceRequest{}, err
	}

	slog.Info("request_event", "event", "request_rescheduled", "request_id", req.ID,
		"old_date", oldDate.Format("2006-01-02"), "new_date", req.PreferredDate.Format("2006-01-02"),
		"service_type", req.ServiceType, "actor_id", input.ActorID)

	recordAudit(ctx, deps.AuditStore, audit.NewEvent(input.ActorID, input.ActorEmail, audit.CategoryRequest, audit.ActionReschedule).
		WithResource("maintenance_request", req.ID).
		WithDescription(fmt.Sprintf("moved from %s to %s (%s)",
			oldDate.Format("2006-01-02"), req.PreferredDate.Format("2006-01-02"), req.ServiceType)))

	return req, nil
}

// --- Remove Request ---

// RemoveRequestInput carries input for the remove orchestrator.
type RemoveRequestInput struct {
	RequestID  string
	ActorID    string
	ActorEmail string
}

// RemoveRequestDeps holds dependencies for RemoveRequest.
type RemoveRequestDeps struct {
	RequestStore RequestStoreForOrchestrator
	AuditStore   AuditRecorder
}

// ExecuteRemoveRequest deletes an accepted booking.
// PRE: RequestID exists; request is accepted
// POST: Request deleted, or error and no mutation
func ExecuteRemoveRequest(ctx context.Context, input RemoveRequestInput, deps RemoveRequestDeps) error {
	if input.RequestID == "" {
		return errors.New("request ID is required")
	}

	req, err := deps.RequestStore.GetByID(ctx, input.RequestID)
	if err != nil {
		return err
	}

	if err := req.Removable(); err != nil {
		return err
	}

	if err := deps.RequestStore.Delete(ctx, req.ID); err != nil {
		return err
	}

	slog.Info("request_event", "event", "request_removed", "request_id", req.ID,
		"date", req.PreferredDate.Format("2006-01-02"), "actor_id", input.ActorID)

	recordAudit(ctx, deps.AuditStore, audit.NewEvent(input.ActorID, input.ActorEmail, audit.CategoryRequest, audit.ActionDelete).
		WithResource("maintenance_request", req.ID).
		WithDescription(fmt.Sprintf("removed booking for %s on %s", req.Name, req.PreferredDate.Format("2006-01-02"))))

	return nil
}
