package profile

import (
	"context"
	"database/sql"
	"fmt"

	"zefit/internal/adapters/storage"
	domain "zefit/internal/domain/profile"
)

// SQLiteStore implements Store over any SQLDB.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ProfileStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Profile by the staff user's ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	var p domain.Profile
	var name, phone, avatar sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, full_name, phone, avatar_url FROM profile WHERE id = ?", id,
	).Scan(&p.ID, &name, &phone, &avatar)
	if err == sql.ErrNoRows {
		return domain.Profile{}, fmt.Errorf("profile not found: %w", err)
	}
	if err != nil {
		return domain.Profile{}, err
	}
	p.FullName = name.String
	p.Phone = phone.String
	p.AvatarURL = avatar.String
	return p, nil
}

// Save persists a Profile (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, p domain.Profile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profile (id, full_name, phone, avatar_url) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   full_name=excluded.full_name,
		   phone=excluded.phone,
		   avatar_url=excluded.avatar_url`,
		p.ID, storage.NullString(p.FullName), storage.NullString(p.Phone), storage.NullString(p.AvatarURL))
	return err
}
