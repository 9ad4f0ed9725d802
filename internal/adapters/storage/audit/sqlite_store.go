package audit

import (
	"context"
	"time"

	"garage/internal/adapters/storage"
	domain "garage/internal/domain/audit"
)

const timestampFormat = time.RFC3339Nano

// SQLiteStore implements the audit Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new audit event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an audit event.
// PRE: event is valid
// POST: Event is persisted
func (s *SQLiteStore) Save(ctx context.Context, event domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_event (id, timestamp, category, action, actor_id, actor_email, resource_id, resource_type, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Timestamp.Format(timestampFormat), string(event.Category), string(event.Action),
		event.ActorID, event.ActorEmail, event.ResourceID, event.ResourceType, event.Description)
	return err
}

// List returns the most recent audit events.
// PRE: limit > 0
// POST: Returns events ordered by timestamp desc
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, category, action, actor_id, actor_email, resource_id, resource_type, description
		 FROM audit_event ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Category, &e.Action, &e.ActorID, &e.ActorEmail, &e.ResourceID, &e.ResourceType, &e.Description); err != nil {
			return nil, err
		}
		e.Timestamp, _ = time.Parse(timestampFormat, ts)
		events = append(events, e)
	}
	return events, rows.Err()
}
