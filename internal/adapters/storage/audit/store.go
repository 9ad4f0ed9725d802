package audit

import (
	"context"

	domain "garage/internal/domain/audit"
)

// Store persists audit events.
type Store interface {
	Save(ctx context.Context, event domain.Event) error
	List(ctx context.Context, limit int) ([]domain.Event, error)
}
