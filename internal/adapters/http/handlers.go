package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"garage/internal/adapters/http/middleware"
	"garage/internal/application/orchestrators"
	"garage/internal/application/projections"
	"garage/internal/domain/account"
	"garage/internal/domain/closeddate"
	"garage/internal/domain/request"
	"garage/internal/domain/servicetype"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// dateFormat is the wire format for calendar days.
const dateFormat = "2006-01-02"

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("response_encode_failed", "error", err.Error())
		}
	}
}

// apiError is the error envelope returned on every failure.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// writeError writes the error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	var body apiError
	body.Error.Code = code
	body.Error.Message = message
	writeJSON(w, status, body)
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

// validationSentinels are domain errors that indicate bad client input.
var validationSentinels = []error{
	request.ErrEmptyName,
	request.ErrEmptyPhone,
	request.ErrEmptyCarModel,
	request.ErrEmptyLicensePlate,
	request.ErrEmptyPreferredDate,
	request.ErrEmptyServiceType,
	request.ErrInvalidStatus,
	request.ErrPastDate,
	closeddate.ErrEmptyDate,
	servicetype.ErrEmptyName,
	orchestrators.ErrUnknownType,
	projections.ErrInvalidRange,
}

// writeDomainError maps domain and orchestrator errors to API responses.
// Anything unrecognized is treated as an internal error.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, request.ErrNotFound),
		errors.Is(err, closeddate.ErrNotFound),
		errors.Is(err, servicetype.ErrNotFound),
		errors.Is(err, account.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, request.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, closeddate.ErrDateTaken),
		errors.Is(err, orchestrators.ErrDateUnavailable),
		errors.Is(err, orchestrators.ErrTypeExists):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, orchestrators.ErrAccountLocked):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		for _, sentinel := range validationSentinels {
			if errors.Is(err, sentinel) {
				writeError(w, http.StatusBadRequest, "validation_error", err.Error())
				return
			}
		}
		internalError(w, err)
	}
}

// parseDate parses a YYYY-MM-DD value; an empty string yields a zero time.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateFormat, value)
}

// currentActor returns the acting admin for audit entries.
func currentActor(r *http.Request) (id, email string) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		return sess.AccountID, sess.Email
	}
	return "", ""
}

// requestJSON is the wire representation of a maintenance request.
type requestJSON struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	CarModel      string    `json:"carModel"`
	LicensePlate  string    `json:"licensePlate"`
	PreferredDate string    `json:"preferredDate"`
	ServiceType   string    `json:"serviceType,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toRequestJSON(r request.MaintenanceRequest) requestJSON {
	return requestJSON{
		ID:            r.ID,
		Name:          r.Name,
		Phone:         r.Phone,
		CarModel:      r.CarModel,
		LicensePlate:  r.LicensePlate,
		PreferredDate: r.PreferredDate.Format(dateFormat),
		ServiceType:   r.ServiceType,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
	}
}

func toRequestJSONList(requests []request.MaintenanceRequest) []requestJSON {
	out := make([]requestJSON, 0, len(requests))
	for _, r := range requests {
		out = append(out, toRequestJSON(r))
	}
	return out
}

func formatDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(dateFormat))
	}
	return out
}

// registerRoutes wires all API routes. Admin-only routes are wrapped in
// RequireAdmin; everything else is public intake or calendar reads.
func registerRoutes(mux *http.ServeMux) {
	admin := func(h http.HandlerFunc) http.Handler { return middleware.RequireAdmin(h) }

	mux.HandleFunc("POST /api/login", handleLogin)

	mux.HandleFunc("POST /api/maintenance", handleSubmitRequest)
	mux.Handle("GET /api/maintenance", admin(handleListRequests))
	mux.Handle("GET /api/maintenance/summary", admin(handleSummary))
	mux.HandleFunc("GET /api/maintenance/booked-dates", handleBookedDates)
	mux.Handle("PATCH /api/maintenance/{id}", admin(handleUpdateRequest))
	mux.Handle("DELETE /api/maintenance/{id}", admin(handleRemoveRequest))

	mux.HandleFunc("GET /api/closed-dates", handleListClosedDates)
	mux.Handle("POST /api/closed-dates", admin(handleToggleClosedDate))
	mux.Handle("DELETE /api/closed-dates/{id}", admin(handleRemoveClosedDate))
	mux.HandleFunc("GET /api/availability", handleAvailability)

	mux.HandleFunc("GET /api/service-types", handleListServiceTypes)
	mux.Handle("POST /api/service-types", admin(handleCreateServiceType))
	mux.Handle("DELETE /api/service-types/{id}", admin(handleRemoveServiceType))

	mux.Handle("GET /api/audit", admin(handleAuditTrail))
}

// handleLogin authenticates an admin and returns a bearer token (POST /api/login)
// PRE: Body carries email and password
// POST: Returns {token} on success; failed attempts are counted
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    body.Email,
		Password: body.Password,
	}, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		AuditStore:   stores.AuditStore,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	token, err := tokenIssuer.Issue(middleware.Session{
		AccountID: result.AccountID,
		Email:     result.Email,
		Role:      result.Role,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// handleSubmitRequest takes a public booking request (POST /api/maintenance)
// PRE: Body carries contact fields, preferredDate (YYYY-MM-DD) and serviceType
// POST: Request created in pending status; 201 with the created entity
func handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name          string `json:"name"`
		Phone         string `json:"phone"`
		CarModel      string `json:"carModel"`
		LicensePlate  string `json:"licensePlate"`
		PreferredDate string `json:"preferredDate"`
		ServiceType   string `json:"serviceType"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}
	date, err := parseDate(body.PreferredDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "preferredDate must be YYYY-MM-DD")
		return
	}

	req, err := orchestrators.ExecuteSubmitRequest(r.Context(), orchestrators.SubmitRequestInput{
		Name:          body.Name,
		Phone:         body.Phone,
		CarModel:      body.CarModel,
		LicensePlate:  body.LicensePlate,
		PreferredDate: date,
		ServiceType:   body.ServiceType,
	}, orchestrators.SubmitRequestDeps{
		RequestStore:     stores.RequestStore,
		ClosedDateStore:  stores.ClosedDateStore,
		ServiceTypeStore: stores.ServiceTypeStore,
		EmailSender:      emailSender,
		FromAddress:      emailFromAddress,
		NotifyAddress:    notifyAddress,
		GenerateID:       generateID,
		Now:              timeNow,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRequestJSON(req))
}

// handleListRequests returns the filtered dashboard snapshot (GET /api/maintenance)
// PRE: Admin session; optional search and date query params
// POST: Returns pending and accepted requests matching the filter
func handleListRequests(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "date must be YYYY-MM-DD")
		return
	}

	result, err := projections.QueryFilterRequests(r.Context(), projections.FilterRequestsQuery{
		SearchText: r.URL.Query().Get("search"),
		Date:       date,
	}, projections.FilterRequestsDeps{RequestStore: stores.RequestStore})
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]requestJSON{
		"pending":  toRequestJSONList(result.Pending),
		"accepted": toRequestJSONList(result.Accepted),
	})
}

// handleSummary returns the dashboard counters (GET /api/maintenance/summary)
// PRE: Admin session
// POST: Returns todayRequests, pendingRequests and statusBreakdown
func handleSummary(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetSummary(r.Context(),
		projections.GetSummaryDeps{RequestStore: stores.RequestStore}, timeNow())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleBookedDates returns days holding accepted bookings (GET /api/maintenance/booked-dates)
// PRE: none
// POST: Returns distinct YYYY-MM-DD values, ascending
func handleBookedDates(w http.ResponseWriter, r *http.Request) {
	dates, err := projections.QueryGetBookedDates(r.Context(), projections.GetAvailabilityDeps{
		RequestStore:    stores.RequestStore,
		ClosedDateStore: stores.ClosedDateStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, formatDates(dates))
}

// handleUpdateRequest decides or reschedules a request (PATCH /api/maintenance/{id})
// The body carries either {status} for a decision or {preferredDate[,serviceType]}
// for a reschedule; mixing the two is rejected.
// PRE: Admin session; request exists
// POST: Exactly one mutation applied, or an error and no change
func handleUpdateRequest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	actorID, actorEmail := currentActor(r)

	var body struct {
		Status        string `json:"status"`
		PreferredDate string `json:"preferredDate"`
		ServiceType   string `json:"serviceType"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}

	switch {
	case body.Status != "" && body.PreferredDate == "" && body.ServiceType == "":
		req, err := orchestrators.ExecuteDecideRequest(r.Context(), orchestrators.DecideRequestInput{
			RequestID:  id,
			Decision:   body.Status,
			ActorID:    actorID,
			ActorEmail: actorEmail,
		}, orchestrators.DecideRequestDeps{
			RequestStore:  stores.RequestStore,
			AuditStore:    stores.AuditStore,
			EmailSender:   emailSender,
			FromAddress:   emailFromAddress,
			NotifyAddress: notifyAddress,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRequestJSON(req))

	case body.Status == "" && body.PreferredDate != "":
		date, err := parseDate(body.PreferredDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "preferredDate must be YYYY-MM-DD")
			return
		}
		req, err := orchestrators.ExecuteRescheduleRequest(r.Context(), orchestrators.RescheduleRequestInput{
			RequestID:  id,
			NewDate:    date,
			NewType:    body.ServiceType,
			ActorID:    actorID,
			ActorEmail: actorEmail,
		}, orchestrators.RescheduleRequestDeps{
			RequestStore:     stores.RequestStore,
			ServiceTypeStore: stores.ServiceTypeStore,
			AuditStore:       stores.AuditStore,
			Now:              timeNow,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRequestJSON(req))

	default:
		writeError(w, http.StatusBadRequest, "validation_error",
			"body must carry either status or preferredDate with optional serviceType")
	}
}

// handleRemoveRequest deletes an accepted booking (DELETE /api/maintenance/{id})
// PRE: Admin session; request exists and is accepted
// POST: Request deleted; 204
func handleRemoveRequest(w http.ResponseWriter, r *http.Request) {
	actorID, actorEmail := currentActor(r)
	err := orchestrators.ExecuteRemoveRequest(r.Context(), orchestrators.RemoveRequestInput{
		RequestID:  r.PathValue("id"),
		ActorID:    actorID,
		ActorEmail: actorEmail,
	}, orchestrators.RemoveRequestDeps{
		RequestStore: stores.RequestStore,
		AuditStore:   stores.AuditStore,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
