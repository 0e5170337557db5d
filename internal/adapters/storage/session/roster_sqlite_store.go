package session

import (
	"context"

	"zefit/internal/adapters/storage"
	domain "zefit/internal/domain/session"
)

const rosterSelect = `SELECT r.id, r.session_id, r.member_id, r.status, m.full_name
	FROM session_roster r
	JOIN member m ON m.id = r.member_id`

// RosterSQLiteStore implements RosterStore over any SQLDB.
type RosterSQLiteStore struct {
	db storage.SQLDB
}

// NewRosterSQLiteStore creates a new roster store.
func NewRosterSQLiteStore(db storage.SQLDB) *RosterSQLiteStore {
	return &RosterSQLiteStore{db: db}
}

// Add enrolls a member in a session.
// PRE: entry has been validated
// POST: Entry is persisted; an existing (session, member) pair yields ErrAlreadyEnrolled
func (s *RosterSQLiteStore) Add(ctx context.Context, e domain.RosterEntry) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO session_roster (id, session_id, member_id, status) VALUES (?, ?, ?, ?)",
		e.ID, e.SessionID, e.MemberID, e.Status)
	if storage.IsUniqueViolation(err) {
		return domain.ErrAlreadyEnrolled
	}
	return err
}

// Remove drops a member from one session. Removing an absent entry is a no-op.
// PRE: sessionID and memberID are non-empty
// POST: No entry for the pair remains
func (s *RosterSQLiteStore) Remove(ctx context.Context, sessionID, memberID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM session_roster WHERE session_id = ? AND member_id = ?", sessionID, memberID)
	return err
}

// ListBySession returns the session's roster ordered by member name.
// PRE: sessionID is non-empty
// POST: Returns entries with member names joined
func (s *RosterSQLiteStore) ListBySession(ctx context.Context, sessionID string) ([]domain.RosterEntry, error) {
	return s.list(ctx, rosterSelect+" WHERE r.session_id = ? ORDER BY m.full_name, r.id", sessionID)
}

// ListByTrainer returns roster entries across all of a trainer's sessions.
// PRE: trainerID is non-empty
// POST: Returns entries with member names joined; a member may appear more than once
func (s *RosterSQLiteStore) ListByTrainer(ctx context.Context, trainerID string) ([]domain.RosterEntry, error) {
	return s.list(ctx, rosterSelect+`
		JOIN training_session s ON s.id = r.session_id
		WHERE s.trainer_id = ?
		ORDER BY m.full_name, r.id`, trainerID)
}

// RemoveMemberFromTrainer deletes the member's entries across all of the
// trainer's sessions and returns how many were removed.
// PRE: trainerID and memberID are non-empty
// POST: The member is enrolled in none of the trainer's sessions
func (s *RosterSQLiteStore) RemoveMemberFromTrainer(ctx context.Context, trainerID, memberID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM session_roster
		 WHERE member_id = ?
		   AND session_id IN (SELECT id FROM training_session WHERE trainer_id = ?)`,
		memberID, trainerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *RosterSQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.RosterEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RosterEntry
	for rows.Next() {
		var e domain.RosterEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.MemberID, &e.Status, &e.MemberName); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
