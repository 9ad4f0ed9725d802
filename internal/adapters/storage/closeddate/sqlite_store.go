package closeddate

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"garage/internal/adapters/storage"
	domain "garage/internal/domain/closeddate"
)

const dateFormat = "2006-01-02"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new closed-date store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a ClosedDate by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.ClosedDate, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, date FROM closed_date WHERE id = ?", id)
	return scanClosedDate(row.Scan, id)
}

// GetByDate retrieves the ClosedDate entry for a calendar day, if any.
// PRE: date is a valid date
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByDate(ctx context.Context, date time.Time) (domain.ClosedDate, error) {
	day := date.Format(dateFormat)
	row := s.db.QueryRowContext(ctx, "SELECT id, date FROM closed_date WHERE date = ?", day)
	return scanClosedDate(row.Scan, day)
}

// Save persists a ClosedDate to the database.
// The UNIQUE constraint on date turns a same-day race into ErrDateTaken.
// PRE: entity has been validated
// POST: Entity is inserted, or ErrDateTaken if the day is already closed
func (s *SQLiteStore) Save(ctx context.Context, entity domain.ClosedDate) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO closed_date (id, date) VALUES (?, ?)",
		entity.ID, entity.Date.Format(dateFormat),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %s", domain.ErrDateTaken, entity.Date.Format(dateFormat))
	}
	return err
}

// Delete removes a ClosedDate from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed; ErrNotFound if absent
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM closed_date WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return nil
}

// List retrieves all ClosedDates ordered by date.
// PRE: none
// POST: Returns all entities
func (s *SQLiteStore) List(ctx context.Context) ([]domain.ClosedDate, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, date FROM closed_date ORDER BY date")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ClosedDate
	for rows.Next() {
		entity, err := scanClosedDate(rows.Scan, "")
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanClosedDate(scan func(dest ...any) error, key string) (domain.ClosedDate, error) {
	var entity domain.ClosedDate
	var dateStr string
	err := scan(&entity.ID, &dateStr)
	if err == sql.ErrNoRows {
		return domain.ClosedDate{}, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	if err != nil {
		return domain.ClosedDate{}, err
	}
	entity.Date, _ = time.Parse(dateFormat, dateStr)
	return entity, nil
}
