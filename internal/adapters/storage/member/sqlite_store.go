package member

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"zefit/internal/adapters/storage"
	domain "zefit/internal/domain/member"
)

const memberColumns = "id, card_code, full_name, phone, email, status, note, created_at"

// SQLiteStore implements Store over any SQLDB.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new MemberStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Member by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM member WHERE id = ?", id)
	m, err := scanMember(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Member{}, fmt.Errorf("member not found: %w", err)
	}
	return m, err
}

// GetByCardCode retrieves a Member by its exact card code.
// PRE: cardCode is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByCardCode(ctx context.Context, cardCode string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM member WHERE card_code = ?", cardCode)
	m, err := scanMember(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Member{}, fmt.Errorf("member not found: %w", err)
	}
	return m, err
}

// Save persists a Member to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update); a taken card code yields ErrDuplicateCardCode
func (s *SQLiteStore) Save(ctx context.Context, m domain.Member) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO member (`+memberColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   card_code=excluded.card_code,
		   full_name=excluded.full_name,
		   phone=excluded.phone,
		   email=excluded.email,
		   status=excluded.status,
		   note=excluded.note`,
		m.ID, m.CardCode, m.FullName, storage.NullString(m.Phone), storage.NullString(m.Email),
		m.Status, storage.NullString(m.Note), storage.FormatTime(m.CreatedAt))
	if storage.IsUniqueViolation(err) {
		return domain.ErrDuplicateCardCode
	}
	return err
}

// List returns members matching the filter, newest first.
// PRE: filter is valid
// POST: Returns matching members (possibly empty)
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Member, error) {
	var where []string
	var args []any
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if !filter.CreatedFrom.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, storage.FormatTime(filter.CreatedFrom))
	}
	if !filter.CreatedTo.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, storage.FormatTime(filter.CreatedTo))
	}

	query := "SELECT " + memberColumns + " FROM member"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		m, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// NamesByID resolves member IDs to full names. Unknown IDs are omitted.
// PRE: none
// POST: Returns a map from ID to full name
func (s *SQLiteStore) NamesByID(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, "SELECT id, full_name FROM member WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

// scanMember scans a member row using the provided scan function.
func scanMember(scan func(dest ...any) error) (domain.Member, error) {
	var m domain.Member
	var phone, email, note sql.NullString
	var createdAt string
	if err := scan(&m.ID, &m.CardCode, &m.FullName, &phone, &email, &m.Status, &note, &createdAt); err != nil {
		return domain.Member{}, err
	}
	m.Phone = phone.String
	m.Email = email.String
	m.Note = note.String
	t, err := storage.ParseTime(createdAt)
	if err != nil {
		return domain.Member{}, fmt.Errorf("member %s: %w", m.ID, err)
	}
	m.CreatedAt = t
	return m, nil
}
