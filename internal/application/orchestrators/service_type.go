package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"garage/internal/domain/audit"
	"garage/internal/domain/servicetype"
)

// ServiceTypeStoreForOrchestrator defines the store interface needed by taxonomy orchestrators.
type ServiceTypeStoreForOrchestrator interface {
	GetByName(ctx context.Context, name string) (servicetype.ServiceType, error)
	Save(ctx context.Context, st servicetype.ServiceType) error
	Delete(ctx context.Context, id string) error
}

var ErrTypeExists = errors.New("a service type with this name already exists")

// --- Create Service Type ---

// CreateServiceTypeInput carries input for the create orchestrator.
type CreateServiceTypeInput struct {
	Name        string
	Description string
	ActorID     string
	ActorEmail  string
}

// CreateServiceTypeDeps holds dependencies for CreateServiceType.
type CreateServiceTypeDeps struct {
	ServiceTypeStore ServiceTypeStoreForOrchestrator
	AuditStore       AuditRecorder
	GenerateID       func() string
}

// ExecuteCreateServiceType adds a new type to the taxonomy.
// PRE: Name is non-empty and not already taken
// POST: Type persisted, or error and no mutation
func ExecuteCreateServiceType(ctx context.Context, input CreateServiceTypeInput, deps CreateServiceTypeDeps) (servicetype.ServiceType, error) {
	st := servicetype.ServiceType{
		ID:          deps.GenerateID(),
		Name:        input.Name,
		Description: input.Description,
	}
	if err := st.Validate(); err != nil {
		return servicetype.ServiceType{}, err
	}

	if _, err := deps.ServiceTypeStore.GetByName(ctx, input.Name); err == nil {
		return servicetype.ServiceType{}, ErrTypeExists
	} else if !errors.Is(err, servicetype.ErrNotFound) {
		return servicetype.ServiceType{}, err
	}

	if err := deps.ServiceTypeStore.Save(ctx, st); err != nil {
		return servicetype.ServiceType{}, err
	}

	slog.Info("taxonomy_event", "event", "service_type_created", "type_id", st.ID, "name", st.Name, "actor_id", input.ActorID)
	recordAudit(ctx, deps.AuditStore, audit.NewEvent(input.ActorID, input.ActorEmail, audit.CategoryTaxonomy, audit.ActionCreate).
		WithResource("service_type", st.ID).
		WithDescription("created type "+st.Name))
	return st, nil
}

// --- Remove Service Type ---

// RemoveServiceTypeInput carries input for the delete orchestrator.
type RemoveServiceTypeInput struct {
	ID         string
	ActorID    string
	ActorEmail string
}

// RemoveServiceTypeDeps holds dependencies for RemoveServiceType.
type RemoveServiceTypeDeps struct {
	ServiceTypeStore ServiceTypeStoreForOrchestrator
	AuditStore       AuditRecorder
}

// ExecuteRemoveServiceType deletes a type from the taxonomy. Existing
// requests keep their type name; only new intake and reschedules are
// affected.
// PRE: ID is non-empty
// POST: Type deleted, or ErrNotFound and no mutation
func ExecuteRemoveServiceType(ctx context.Context, input RemoveServiceTypeInput, deps RemoveServiceTypeDeps) error {
	if input.ID == "" {
		return errors.New("service type ID is required")
	}

	if err := deps.ServiceTypeStore.Delete(ctx, input.ID); err != nil {
		return err
	}

	slog.Info("taxonomy_event", "event", "service_type_removed", "type_id", input.ID, "actor_id", input.ActorID)
	recordAudit(ctx, deps.AuditStore, audit.NewEvent(input.ActorID, input.ActorEmail, audit.CategoryTaxonomy, audit.ActionDelete).
		WithResource("service_type", input.ID).
		WithDescription("removed type"))
	return nil
}
