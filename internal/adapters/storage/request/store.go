package request

import (
	"context"

	domain "garage/internal/domain/request"
)

// Store persists MaintenanceRequest state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.MaintenanceRequest, error)
	Save(ctx context.Context, value domain.MaintenanceRequest) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.MaintenanceRequest, error)
}
