package session

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"zefit/internal/adapters/storage"
	domain "zefit/internal/domain/session"
)

const sessionSelect = `SELECT s.id, s.trainer_id, s.title, s.description, s.starts_at, s.ends_at, m.full_name
	FROM training_session s
	LEFT JOIN trainer t ON t.id = s.trainer_id
	LEFT JOIN member m ON m.id = t.member_id`

// SQLiteStore implements Store over any SQLDB.
// Times are read back in loc.
type SQLiteStore struct {
	db  storage.SQLDB
	loc *time.Location
}

// NewSQLiteStore creates a new SessionStore.
func NewSQLiteStore(db storage.SQLDB, loc *time.Location) *SQLiteStore {
	if loc == nil {
		loc = time.Local
	}
	return &SQLiteStore{db: db, loc: loc}
}

// GetByID retrieves a Session by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	sess, err := s.scanSession(s.db.QueryRowContext(ctx, sessionSelect+" WHERE s.id = ?", id).Scan)
	if err == sql.ErrNoRows {
		return domain.Session{}, fmt.Errorf("session not found: %w", err)
	}
	return sess, err
}

// EarliestByTrainer returns the trainer's session with the earliest start.
// PRE: trainerID is non-empty
// POST: Returns the session or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) EarliestByTrainer(ctx context.Context, trainerID string) (domain.Session, error) {
	sess, err := s.scanSession(s.db.QueryRowContext(ctx,
		sessionSelect+" WHERE s.trainer_id = ? ORDER BY s.starts_at, s.id LIMIT 1", trainerID).Scan)
	if err == sql.ErrNoRows {
		return domain.Session{}, fmt.Errorf("session not found: %w", err)
	}
	return sess, err
}

// Save persists a Session (insert or overwrite by id).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, sess domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO training_session (id, trainer_id, title, description, starts_at, ends_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   trainer_id=excluded.trainer_id,
		   title=excluded.title,
		   description=excluded.description,
		   starts_at=excluded.starts_at,
		   ends_at=excluded.ends_at`,
		sess.ID, sess.TrainerID, sess.Title, storage.NullString(sess.Description),
		storage.FormatTime(sess.StartsAt), storage.FormatNullTime(sess.EndsAt))
	return err
}

// List returns sessions matching the filter, earliest first.
// PRE: filter is valid
// POST: Returns matching sessions with trainer names joined
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Session, error) {
	var where []string
	var args []any
	if filter.TrainerID != "" {
		where = append(where, "s.trainer_id = ?")
		args = append(args, filter.TrainerID)
	}
	if !filter.From.IsZero() {
		where = append(where, "s.starts_at >= ?")
		args = append(args, storage.FormatTime(filter.From))
	}
	if !filter.To.IsZero() {
		where = append(where, "s.starts_at < ?")
		args = append(args, storage.FormatTime(filter.To))
	}

	query := sessionSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY s.starts_at, s.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		sess, err := s.scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) scanSession(scan func(dest ...any) error) (domain.Session, error) {
	var sess domain.Session
	var description, endsAt, trainerName sql.NullString
	var startsAt string
	if err := scan(&sess.ID, &sess.TrainerID, &sess.Title, &description, &startsAt, &endsAt, &trainerName); err != nil {
		return domain.Session{}, err
	}
	sess.Description = description.String
	sess.TrainerName = trainerName.String
	start, err := storage.ParseTime(startsAt)
	if err != nil {
		return domain.Session{}, fmt.Errorf("session %s: %w", sess.ID, err)
	}
	sess.StartsAt = start.In(s.loc)
	end, err := storage.ParseNullTime(endsAt)
	if err != nil {
		return domain.Session{}, fmt.Errorf("session %s: %w", sess.ID, err)
	}
	if end != nil {
		e := end.In(s.loc)
		sess.EndsAt = &e
	}
	return sess, nil
}
