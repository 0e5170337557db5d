// Package cascade removes an aggregate root together with everything it owns.
// Every delete runs in one transaction; a failing step rolls the whole delete
// back and is named in the returned StepError.
package cascade

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"zefit/internal/adapters/storage"
)

// Member delete steps, in execution order.
const (
	StepTrainerSessionRoster = "trainer session roster"
	StepTrainerSessions      = "trainer sessions"
	StepAttendeeRoster       = "attendee roster"
	StepPayments             = "payments"
	StepPeriods              = "periods"
	StepVisits               = "visits"
	StepTrainer              = "trainer record"
	StepMember               = "member record"
)

// Session delete steps, in execution order.
const (
	StepSessionRoster = "session roster"
	StepSession       = "session record"
)

type step struct {
	name  string
	query string
}

var memberSteps = []step{
	{StepTrainerSessionRoster, `DELETE FROM session_roster WHERE session_id IN (
		SELECT s.id FROM training_session s JOIN trainer t ON t.id = s.trainer_id WHERE t.member_id = ?)`},
	{StepTrainerSessions, `DELETE FROM training_session WHERE trainer_id IN (SELECT id FROM trainer WHERE member_id = ?)`},
	{StepAttendeeRoster, `DELETE FROM session_roster WHERE member_id = ?`},
	{StepPayments, `DELETE FROM payment WHERE member_id = ?`},
	{StepPeriods, `DELETE FROM membership_period WHERE member_id = ?`},
	{StepVisits, `DELETE FROM visit WHERE member_id = ?`},
	{StepTrainer, `DELETE FROM trainer WHERE member_id = ?`},
	{StepMember, `DELETE FROM member WHERE id = ?`},
}

var sessionSteps = []step{
	{StepSessionRoster, `DELETE FROM session_roster WHERE session_id = ?`},
	{StepSession, `DELETE FROM training_session WHERE id = ?`},
}

// StepError names the step of a cascading delete that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("cascade step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// StepResult records how many rows one step removed.
type StepResult struct {
	Step string
	Rows int64
}

// Deleter runs cascading deletes against a SQLDB.
type Deleter struct {
	db storage.SQLDB
}

// NewDeleter creates a cascade Deleter.
func NewDeleter(db storage.SQLDB) *Deleter {
	return &Deleter{db: db}
}

// DeleteMember removes a member and everything owned by it or by its trainer record.
// PRE: memberID is non-empty
// POST: On success no row references the member; on error nothing is committed
func (d *Deleter) DeleteMember(ctx context.Context, memberID string) ([]StepResult, error) {
	return d.run(ctx, "member", memberID, memberSteps)
}

// DeleteSession removes a session and its roster.
// PRE: sessionID is non-empty
// POST: On success neither the session nor its roster exists; on error nothing is committed
func (d *Deleter) DeleteSession(ctx context.Context, sessionID string) ([]StepResult, error) {
	return d.run(ctx, "session", sessionID, sessionSteps)
}

func (d *Deleter) run(ctx context.Context, entity, id string, steps []step) ([]StepResult, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin %s delete: %w", entity, err)
	}
	defer tx.Rollback()

	results := make([]StepResult, 0, len(steps))
	for _, s := range steps {
		res, err := tx.ExecContext(ctx, s.query, id)
		if err != nil {
			return results, &StepError{Step: s.name, Err: err}
		}
		n, err := res.RowsAffected()
		if err != nil {
			return results, &StepError{Step: s.name, Err: err}
		}
		results = append(results, StepResult{Step: s.name, Rows: n})
	}

	// The root row is always last; nothing removed means the id never existed.
	if results[len(results)-1].Rows == 0 {
		return results, fmt.Errorf("%s not found: %w", entity, sql.ErrNoRows)
	}
	if err := tx.Commit(); err != nil {
		return results, fmt.Errorf("commit %s delete: %w", entity, err)
	}
	return results, nil
}

// FailedStep returns the step named by err, or "" when err is not a StepError.
func FailedStep(err error) string {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}
