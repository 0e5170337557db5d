package payment

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"zefit/internal/adapters/storage"
	"zefit/internal/domain/money"
	domain "zefit/internal/domain/payment"
)

const paymentColumns = "id, member_id, period_id, amount_cents, paid_at, method, created_at"

// SQLiteStore implements Store over any SQLDB.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new PaymentStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Payment by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payment WHERE id = ?", id)
	p, err := scanPayment(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Payment{}, fmt.Errorf("payment not found: %w", err)
	}
	return p, err
}

// Save inserts a Payment.
// PRE: entity has been validated
// POST: Entity is persisted; existing IDs are left untouched
func (s *SQLiteStore) Save(ctx context.Context, p domain.Payment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payment (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		p.ID, p.MemberID, storage.NullString(p.PeriodID), p.Amount.Cents(),
		storage.FormatTime(p.PaidAt), p.Method, storage.FormatTime(p.CreatedAt))
	return err
}

// List returns payments matching the filter, latest first.
// PRE: filter is valid
// POST: Returns matching payments (possibly empty)
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Payment, error) {
	var where []string
	var args []any
	if filter.MemberID != "" {
		where = append(where, "member_id = ?")
		args = append(args, filter.MemberID)
	}
	if !filter.From.IsZero() {
		where = append(where, "paid_at >= ?")
		args = append(args, storage.FormatTime(filter.From))
	}
	if !filter.To.IsZero() {
		where = append(where, "paid_at <= ?")
		args = append(args, storage.FormatTime(filter.To))
	}

	query := "SELECT " + paymentColumns + " FROM payment"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY paid_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// scanPayment scans a payment row using the provided scan function.
func scanPayment(scan func(dest ...any) error) (domain.Payment, error) {
	var p domain.Payment
	var periodID sql.NullString
	var cents int64
	var paidAt, createdAt string
	if err := scan(&p.ID, &p.MemberID, &periodID, &cents, &paidAt, &p.Method, &createdAt); err != nil {
		return domain.Payment{}, err
	}
	p.PeriodID = periodID.String
	p.Amount = money.FromCents(cents)
	var err error
	if p.PaidAt, err = storage.ParseTime(paidAt); err != nil {
		return domain.Payment{}, fmt.Errorf("payment %s: %w", p.ID, err)
	}
	if p.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Payment{}, fmt.Errorf("payment %s: %w", p.ID, err)
	}
	return p, nil
}
