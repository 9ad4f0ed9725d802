package closeddate

import (
	"context"
	"time"

	domain "garage/internal/domain/closeddate"
)

// Store persists ClosedDate state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.ClosedDate, error)
	GetByDate(ctx context.Context, date time.Time) (domain.ClosedDate, error)
	Save(ctx context.Context, value domain.ClosedDate) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.ClosedDate, error)
}
