package account

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"zefit/internal/adapters/storage"
	domain "zefit/internal/domain/account"
)

const accountColumns = "id, email, password_hash, role, created_at, failed_logins, locked_until"

// SQLiteStore implements Store over any SQLDB.
// Emails are stored lower-cased so lookups are case-insensitive.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AccountStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM staff_account WHERE id = ?", id)
	a, err := scanAccount(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return a, err
}

// GetByEmail retrieves an Account by email, ignoring case.
// PRE: email is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM staff_account WHERE email = ?", normalizeEmail(email))
	a, err := scanAccount(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return a, err
}

// Save persists an Account (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted; a taken email yields ErrEmailTaken
func (s *SQLiteStore) Save(ctx context.Context, a domain.Account) error {
	var lockedUntil any
	if !a.LockedUntil.IsZero() {
		lockedUntil = storage.FormatTime(a.LockedUntil)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO staff_account (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email=excluded.email,
		   password_hash=excluded.password_hash,
		   role=excluded.role,
		   failed_logins=excluded.failed_logins,
		   locked_until=excluded.locked_until`,
		a.ID, normalizeEmail(a.Email), a.PasswordHash, a.Role,
		storage.FormatTime(a.CreatedAt), a.FailedLogins, lockedUntil)
	if storage.IsUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	return err
}

// Count returns the total number of accounts.
// PRE: none
// POST: Returns total account count
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM staff_account").Scan(&n)
	return n, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var a domain.Account
	var createdAt string
	var lockedUntil sql.NullString
	if err := scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &createdAt, &a.FailedLogins, &lockedUntil); err != nil {
		return domain.Account{}, err
	}
	var err error
	if a.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Account{}, fmt.Errorf("account %s: %w", a.ID, err)
	}
	locked, err := storage.ParseNullTime(lockedUntil)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account %s: %w", a.ID, err)
	}
	if locked != nil {
		a.LockedUntil = *locked
	}
	return a, nil
}
