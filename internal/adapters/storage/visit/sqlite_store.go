package visit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"zefit/internal/adapters/storage"
	domain "zefit/internal/domain/visit"
)

const visitColumns = "id, member_id, arrived_at, departed_at"

// SQLiteStore implements Store over any SQLDB.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new VisitStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Visit by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Visit, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+visitColumns+" FROM visit WHERE id = ?", id)
	v, err := scanVisit(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Visit{}, fmt.Errorf("visit not found: %w", err)
	}
	return v, err
}

// GetOpenByMember returns the member's latest visit without a departure.
// PRE: memberID is non-empty
// POST: Returns the open visit or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetOpenByMember(ctx context.Context, memberID string) (domain.Visit, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+visitColumns+" FROM visit WHERE member_id = ? AND departed_at IS NULL ORDER BY arrived_at DESC LIMIT 1",
		memberID)
	v, err := scanVisit(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Visit{}, fmt.Errorf("open visit not found: %w", err)
	}
	return v, err
}

// Save persists a Visit (insert or update of the departure).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, v domain.Visit) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visit (`+visitColumns+`) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET departed_at=excluded.departed_at`,
		v.ID, v.MemberID, storage.FormatTime(v.ArrivedAt), storage.FormatNullTime(v.DepartedAt))
	return err
}

// List returns visits matching the filter, latest arrival first.
// PRE: filter is valid
// POST: Returns matching visits (possibly empty)
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Visit, error) {
	var where []string
	var args []any
	if filter.MemberID != "" {
		where = append(where, "member_id = ?")
		args = append(args, filter.MemberID)
	}
	if !filter.ArrivedFrom.IsZero() {
		where = append(where, "arrived_at >= ?")
		args = append(args, storage.FormatTime(filter.ArrivedFrom))
	}
	if !filter.ArrivedTo.IsZero() {
		where = append(where, "arrived_at <= ?")
		args = append(args, storage.FormatTime(filter.ArrivedTo))
	}
	if filter.OpenOnly {
		where = append(where, "departed_at IS NULL")
	}

	query := "SELECT " + visitColumns + " FROM visit"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY arrived_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Visit
	for rows.Next() {
		v, err := scanVisit(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanVisit(scan func(dest ...any) error) (domain.Visit, error) {
	var v domain.Visit
	var arrivedAt string
	var departedAt sql.NullString
	if err := scan(&v.ID, &v.MemberID, &arrivedAt, &departedAt); err != nil {
		return domain.Visit{}, err
	}
	var err error
	if v.ArrivedAt, err = storage.ParseTime(arrivedAt); err != nil {
		return domain.Visit{}, fmt.Errorf("visit %s: %w", v.ID, err)
	}
	if v.DepartedAt, err = storage.ParseNullTime(departedAt); err != nil {
		return domain.Visit{}, fmt.Errorf("visit %s: %w", v.ID, err)
	}
	return v, nil
}
