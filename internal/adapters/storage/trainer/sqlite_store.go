package trainer

import (
	"context"
	"database/sql"
	"fmt"

	"zefit/internal/adapters/storage"
	domain "zefit/internal/domain/trainer"
)

const trainerSelect = `SELECT t.id, t.member_id, t.note, m.full_name
	FROM trainer t
	JOIN member m ON m.id = t.member_id`

// SQLiteStore implements Store over any SQLDB.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new TrainerStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Trainer by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Trainer, error) {
	t, err := scanTrainer(s.db.QueryRowContext(ctx, trainerSelect+" WHERE t.id = ?", id).Scan)
	if err == sql.ErrNoRows {
		return domain.Trainer{}, fmt.Errorf("trainer not found: %w", err)
	}
	return t, err
}

// GetByMemberID retrieves the Trainer record of a member.
// PRE: memberID is non-empty
// POST: Returns the entity or an error if the member is not a trainer
func (s *SQLiteStore) GetByMemberID(ctx context.Context, memberID string) (domain.Trainer, error) {
	t, err := scanTrainer(s.db.QueryRowContext(ctx, trainerSelect+" WHERE t.member_id = ?", memberID).Scan)
	if err == sql.ErrNoRows {
		return domain.Trainer{}, fmt.Errorf("trainer not found: %w", err)
	}
	return t, err
}

// Save persists a Trainer.
// PRE: entity has been validated
// POST: Entity is persisted; a second record for the same member yields ErrAlreadyTrainer
func (s *SQLiteStore) Save(ctx context.Context, t domain.Trainer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trainer (id, member_id, note) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET note=excluded.note`,
		t.ID, t.MemberID, storage.NullString(t.Note))
	if storage.IsUniqueViolation(err) {
		return domain.ErrAlreadyTrainer
	}
	return err
}

// List returns all trainers ordered by member name.
// PRE: none
// POST: Returns every trainer (possibly empty)
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Trainer, error) {
	rows, err := s.db.QueryContext(ctx, trainerSelect+" ORDER BY m.full_name, t.id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Trainer
	for rows.Next() {
		t, err := scanTrainer(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTrainer(scan func(dest ...any) error) (domain.Trainer, error) {
	var t domain.Trainer
	var note sql.NullString
	if err := scan(&t.ID, &t.MemberID, &note, &t.MemberName); err != nil {
		return domain.Trainer{}, err
	}
	t.Note = note.String
	return t, nil
}
