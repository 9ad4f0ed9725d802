package request

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"garage/internal/adapters/storage"
	domain "garage/internal/domain/request"
)

const (
	dateFormat      = "2006-01-02"
	timestampFormat = time.RFC3339
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new request store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const requestColumns = "id, name, phone, car_model, license_plate, preferred_date, service_type, status, created_at"

// GetByID retrieves a MaintenanceRequest by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.MaintenanceRequest, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+requestColumns+" FROM maintenance_request WHERE id = ?", id)
	entity, err := scanRequest(row.Scan)
	if err == sql.ErrNoRows {
		return domain.MaintenanceRequest{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.MaintenanceRequest{}, err
	}
	return entity, nil
}

// Save persists a MaintenanceRequest to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.MaintenanceRequest) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO maintenance_request (id, name, phone, car_model, license_plate, preferred_date, service_type, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET preferred_date=excluded.preferred_date, service_type=excluded.service_type, status=excluded.status`,
		entity.ID, entity.Name, entity.Phone, entity.CarModel, entity.LicensePlate,
		entity.PreferredDate.Format(dateFormat), entity.ServiceType, entity.Status,
		entity.CreatedAt.Format(timestampFormat),
	)
	return err
}

// Delete removes a MaintenanceRequest from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed; ErrNotFound if absent
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM maintenance_request WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return nil
}

// List retrieves all MaintenanceRequests ordered by creation time, newest first.
// PRE: none
// POST: Returns all entities
func (s *SQLiteStore) List(ctx context.Context) ([]domain.MaintenanceRequest, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+requestColumns+" FROM maintenance_request ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.MaintenanceRequest
	for rows.Next() {
		entity, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanRequest scans one row using the given scan function.
func scanRequest(scan func(dest ...any) error) (domain.MaintenanceRequest, error) {
	var entity domain.MaintenanceRequest
	var dateStr, createdStr string
	err := scan(&entity.ID, &entity.Name, &entity.Phone, &entity.CarModel, &entity.LicensePlate,
		&dateStr, &entity.ServiceType, &entity.Status, &createdStr)
	if err != nil {
		return domain.MaintenanceRequest{}, err
	}
	entity.PreferredDate, _ = time.Parse(dateFormat, dateStr)
	entity.CreatedAt, _ = time.Parse(timestampFormat, createdStr)
	return entity, nil
}
