package web

import (
	"net/http"

	"garage/internal/application/orchestrators"
	"garage/internal/application/projections"
	"garage/internal/domain/closeddate"
)

// closedDateJSON is the wire representation of a closed calendar day.
type closedDateJSON struct {
	ID   string `json:"id"`
	Date string `json:"date"`
}

func toClosedDateJSON(c closeddate.ClosedDate) closedDateJSON {
	return closedDateJSON{ID: c.ID, Date: c.Date.Format(dateFormat)}
}

// handleListClosedDates returns every closed day (GET /api/closed-dates)
// PRE: none
// POST: Returns the closed-date list
func handleListClosedDates(w http.ResponseWriter, r *http.Request) {
	dates, err := stores.ClosedDateStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]closedDateJSON, 0, len(dates))
	for _, c := range dates {
		out = append(out, toClosedDateJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleToggleClosedDate flips a day between open and closed (POST /api/closed-dates)
// PRE: Admin session; body carries {date: YYYY-MM-DD}
// POST: Day closed if it was open and vice versa; returns the resulting state
func handleToggleClosedDate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date string `json:"date"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}
	date, err := parseDate(body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "date must be YYYY-MM-DD")
		return
	}

	actorID, actorEmail := currentActor(r)
	result, err := orchestrators.ExecuteToggleClosedDate(r.Context(), orchestrators.ToggleClosedDateInput{
		Date:       date,
		ActorID:    actorID,
		ActorEmail: actorEmail,
	}, orchestrators.ToggleClosedDateDeps{
		ClosedDateStore: stores.ClosedDateStore,
		RequestStore:    stores.RequestStore,
		AuditStore:      stores.AuditStore,
		GenerateID:      generateID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if result.Closed {
		writeJSON(w, http.StatusCreated, map[string]any{
			"closed":     true,
			"closedDate": toClosedDateJSON(result.ClosedDate),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"closed": false})
}

// handleRemoveClosedDate reopens a day by ID (DELETE /api/closed-dates/{id})
// PRE: Admin session; entry exists
// POST: Entry deleted; 204
func handleRemoveClosedDate(w http.ResponseWriter, r *http.Request) {
	actorID, actorEmail := currentActor(r)
	err := orchestrators.ExecuteRemoveClosedDate(r.Context(), orchestrators.RemoveClosedDateInput{
		ID:         r.PathValue("id"),
		ActorID:    actorID,
		ActorEmail: actorEmail,
	}, orchestrators.RemoveClosedDateDeps{
		ClosedDateStore: stores.ClosedDateStore,
		AuditStore:      stores.AuditStore,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAvailability returns unavailable days in a range (GET /api/availability?start=&end=)
// PRE: start and end are YYYY-MM-DD, start <= end
// POST: Returns every closed or booked date in the inclusive range
func handleAvailability(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "start must be YYYY-MM-DD")
		return
	}
	end, err := parseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "end must be YYYY-MM-DD")
		return
	}

	dates, err := projections.QueryGetAvailability(r.Context(), projections.GetAvailabilityQuery{
		Start: start,
		End:   end,
	}, projections.GetAvailabilityDeps{
		RequestStore:    stores.RequestStore,
		ClosedDateStore: stores.ClosedDateStore,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"unavailable": formatDates(dates)})
}
