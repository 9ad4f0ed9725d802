package account

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"garage/internal/adapters/storage"
	domain "garage/internal/domain/account"
)

const timestampFormat = time.RFC3339

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const accountColumns = "id, email, password_hash, role, created_at, failed_logins, locked_until"

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE id = ?", id)
	return scanAccount(row.Scan, id)
}

// GetByEmail retrieves an Account by email.
// PRE: email is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE email = ?", email)
	return scanAccount(row.Scan, email)
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	var lockedUntil any
	if !entity.LockedUntil.IsZero() {
		lockedUntil = entity.LockedUntil.Format(timestampFormat)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO account (id, email, password_hash, role, created_at, failed_logins, locked_until)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET email=excluded.email, password_hash=excluded.password_hash, role=excluded.role, failed_logins=excluded.failed_logins, locked_until=excluded.locked_until`,
		entity.ID, entity.Email, entity.PasswordHash, entity.Role,
		entity.CreatedAt.Format(timestampFormat), entity.FailedLogins, lockedUntil,
	)
	return err
}

// Count returns the number of accounts.
// PRE: none
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&n)
	return n, err
}

func scanAccount(scan func(dest ...any) error, key string) (domain.Account, error) {
	var entity domain.Account
	var createdStr string
	var lockedStr sql.NullString
	err := scan(&entity.ID, &entity.Email, &entity.PasswordHash, &entity.Role, &createdStr, &entity.FailedLogins, &lockedStr)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	if err != nil {
		return domain.Account{}, err
	}
	entity.CreatedAt, _ = time.Parse(timestampFormat, createdStr)
	if lockedStr.Valid {
		entity.LockedUntil, _ = time.Parse(timestampFormat, lockedStr.String)
	}
	return entity, nil
}
