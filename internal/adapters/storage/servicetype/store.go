package servicetype

import (
	"context"

	domain "garage/internal/domain/servicetype"
)

// Store persists ServiceType state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.ServiceType, error)
	GetByName(ctx context.Context, name string) (domain.ServiceType, error)
	Save(ctx context.Context, value domain.ServiceType) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.ServiceType, error)
}
