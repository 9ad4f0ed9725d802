package web

import (
	"net/http"

	"garage/internal/application/orchestrators"
	"garage/internal/domain/servicetype"
)

// serviceTypeJSON is the wire representation of a service type.
type serviceTypeJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func toServiceTypeJSON(st servicetype.ServiceType) serviceTypeJSON {
	return serviceTypeJSON{ID: st.ID, Name: st.Name, Description: st.Description}
}

// handleListServiceTypes returns the taxonomy (GET /api/service-types)
// PRE: none
// POST: Returns all types ordered by name
func handleListServiceTypes(w http.ResponseWriter, r *http.Request) {
	types, err := stores.ServiceTypeStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]serviceTypeJSON, 0, len(types))
	for _, st := range types {
		out = append(out, toServiceTypeJSON(st))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreateServiceType adds a type (POST /api/service-types)
// PRE: Admin session; body carries a unique name
// POST: Type created; 201 with the entity
func handleCreateServiceType(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}

	actorID, actorEmail := currentActor(r)
	st, err := orchestrators.ExecuteCreateServiceType(r.Context(), orchestrators.CreateServiceTypeInput{
		Name:        body.Name,
		Description: body.Description,
		ActorID:     actorID,
		ActorEmail:  actorEmail,
	}, orchestrators.CreateServiceTypeDeps{
		ServiceTypeStore: stores.ServiceTypeStore,
		AuditStore:       stores.AuditStore,
		GenerateID:       generateID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toServiceTypeJSON(st))
}

// handleRemoveServiceType deletes a type (DELETE /api/service-types/{id})
// PRE: Admin session; type exists
// POST: Type deleted; 204
func handleRemoveServiceType(w http.ResponseWriter, r *http.Request) {
	actorID, actorEmail := currentActor(r)
	err := orchestrators.ExecuteRemoveServiceType(r.Context(), orchestrators.RemoveServiceTypeInput{
		ID:         r.PathValue("id"),
		ActorID:    actorID,
		ActorEmail: actorEmail,
	}, orchestrators.RemoveServiceTypeDeps{
		ServiceTypeStore: stores.ServiceTypeStore,
		AuditStore:       stores.AuditStore,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
