package request

import (
	"errors"
	"strings"
	"time"
)

// Request statuses
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// ValidStatuses contains all valid request statuses.
var ValidStatuses = []string{StatusPending, StatusAccepted, StatusRejected}

// Max length constants for customer-supplied fields.
const (
	MaxNameLength         = 200
	MaxPhoneLength        = 30
	MaxCarModelLength     = 100
	MaxLicensePlateLength = 20
)

// Domain errors
var (
	ErrEmptyName          = errors.New("customer name cannot be empty")
	ErrEmptyPhone         = errors.New("phone number cannot be empty")
	ErrEmptyCarModel      = errors.New("car model cannot be empty")
	ErrEmptyLicensePlate  = errors.New("license plate cannot be empty")
	ErrEmptyPreferredDate = errors.New("preferred date cannot be zero")
	ErrEmptyServiceType   = errors.New("service type is required")
	ErrInvalidStatus      = errors.New("status must be one of: pending, accepted, rejected")
	ErrPastDate           = errors.New("preferred date cannot be in the past")
	ErrInvalidTransition  = errors.New("operation is not valid for the current request status")
	ErrNotFound           = errors.New("maintenance request not found")
)

// transitions is the explicit state machine: the only status changes
// permitted via Transition. Reschedule and Remove are guarded separately
// and apply to accepted requests only.
var transitions = map[string][]string{
	StatusPending: {StatusAccepted, StatusRejected},
}

// CanTransition reports whether a status change from -> to is legal.
// INVARIANT: the transition table is never mutated at runtime
func CanTransition(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// MaintenanceRequest represents a customer booking for vehicle service on a
// specific calendar day. Identity and contact fields are set at intake and
// immutable; PreferredDate and ServiceType are editable only while accepted.
type MaintenanceRequest struct {
	ID            string
	Name          string
	Phone         string
	CarModel      string
	LicensePlate  string
	PreferredDate time.Time // day granularity; time-of-day is not significant
	ServiceType   string    // name of an existing service type; required once accepted
	Status        string    // pending, accepted, rejected
	CreatedAt     time.Time
}

// Validate checks if the MaintenanceRequest has valid data.
// PRE: MaintenanceRequest struct is populated
// POST: Returns nil if valid, error otherwise
func (r *MaintenanceRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if len(r.Name) > MaxNameLength {
		return errors.New("customer name is too long")
	}
	if strings.TrimSpace(r.Phone) == "" {
		return ErrEmptyPhone
	}
	if len(r.Phone) > MaxPhoneLength {
		return errors.New("phone number is too long")
	}
	if strings.TrimSpace(r.CarModel) == "" {
		return ErrEmptyCarModel
	}
	if len(r.CarModel) > MaxCarModelLength {
		return errors.New("car model is too long")
	}
	if strings.TrimSpace(r.LicensePlate) == "" {
		return ErrEmptyLicensePlate
	}
	if len(r.LicensePlate) > MaxLicensePlateLength {
		return errors.New("license plate is too long")
	}
	if r.PreferredDate.IsZero() {
		return ErrEmptyPreferredDate
	}
	if !isValidStatus(r.Status) {
		return ErrInvalidStatus
	}
	// Accepted requests must always carry a service type.
	if r.Status == StatusAccepted && strings.TrimSpace(r.ServiceType) == "" {
		return ErrEmptyServiceType
	}
	return nil
}

// IsPending returns true if the request awaits an admin decision.
// INVARIANT: Request fields are not mutated
func (r *MaintenanceRequest) IsPending() bool {
	return r.Status == StatusPending
}

// IsAccepted returns true if the request is a confirmed booking.
// INVARIANT: Request fields are not mutated
func (r *MaintenanceRequest) IsAccepted() bool {
	return r.Status == StatusAccepted
}

// Transition moves the request to target status via the transition table.
// PRE: target is a valid status
// POST: Status is updated, or ErrInvalidTransition and no mutation
func (r *MaintenanceRequest) Transition(target string) error {
	if !isValidStatus(target) {
		return ErrInvalidStatus
	}
	if !CanTransition(r.Status, target) {
		return ErrInvalidTransition
	}
	r.Status = target
	return nil
}

// Reschedule changes the preferred date and service type of an accepted
// request. The request stays accepted.
// PRE: Status is accepted; newType is non-empty; newDate is not before today
// POST: PreferredDate and ServiceType updated, or error and no mutation
func (r *MaintenanceRequest) Reschedule(newDate time.Time, newType string, today time.Time) error {
	if r.Status != StatusAccepted {
		return ErrInvalidTransition
	}
	if newDate.IsZero() {
		return ErrEmptyPreferredDate
	}
	if strings.TrimSpace(newType) == "" {
		return ErrEmptyServiceType
	}
	if beforeDay(newDate, today) {
		return ErrPastDate
	}
	r.PreferredDate = newDate
	r.ServiceType = newType
	return nil
}

// Removable returns nil if the request may be deleted through the admin flow.
// Only confirmed bookings are removable; pending and rejected records are kept.
// INVARIANT: Request fields are not mutated
func (r *MaintenanceRequest) Removable() error {
	if r.Status != StatusAccepted {
		return ErrInvalidTransition
	}
	return nil
}

// beforeDay reports whether a falls on an earlier calendar day than b.
func beforeDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

func isValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}
