package servicetype

import (
	"context"
	"database/sql"
	"fmt"

	"garage/internal/adapters/storage"
	domain "garage/internal/domain/servicetype"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new service-type store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a ServiceType by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.ServiceType, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, description FROM service_type WHERE id = ?", id)
	return scanServiceType(row.Scan, id)
}

// GetByName retrieves a ServiceType by its unique name.
// PRE: name is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByName(ctx context.Context, name string) (domain.ServiceType, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, description FROM service_type WHERE name = ?", name)
	return scanServiceType(row.Scan, name)
}

// Save persists a ServiceType to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.ServiceType) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO service_type (id, name, description) VALUES (?, ?, ?) ON CONFLICT(id) DO UPDATE SET name=excluded.name, description=excluded.description",
		entity.ID, entity.Name, entity.Description,
	)
	return err
}

// Delete removes a ServiceType from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed; ErrNotFound if absent
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM service_type WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return nil
}

// List retrieves all ServiceTypes ordered by name.
// PRE: none
// POST: Returns all entities
func (s *SQLiteStore) List(ctx context.Context) ([]domain.ServiceType, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, description FROM service_type ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ServiceType
	for rows.Next() {
		entity, err := scanServiceType(rows.Scan, "")
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanServiceType(scan func(dest ...any) error, key string) (domain.ServiceType, error) {
	var entity domain.ServiceType
	err := scan(&entity.ID, &entity.Name, &entity.Description)
	if err == sql.ErrNoRows {
		return domain.ServiceType{}, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	if err != nil {
		return domain.ServiceType{}, err
	}
	return entity, nil
}
