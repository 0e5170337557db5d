package membership

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"zefit/internal/adapters/storage"
	domain "zefit/internal/domain/membership"
	"zefit/internal/domain/money"
)

// TypeSQLiteStore implements TypeStore over any SQLDB.
type TypeSQLiteStore struct {
	db storage.SQLDB
}

// NewTypeSQLiteStore creates a new membership type store.
func NewTypeSQLiteStore(db storage.SQLDB) *TypeSQLiteStore {
	return &TypeSQLiteStore{db: db}
}

// GetByID retrieves a Type by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *TypeSQLiteStore) GetByID(ctx context.Context, id string) (domain.Type, error) {
	var t domain.Type
	var price int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, duration_days, default_price_cents FROM membership_type WHERE id = ?", id,
	).Scan(&t.ID, &t.Name, &t.DurationDays, &price)
	if err == sql.ErrNoRows {
		return domain.Type{}, fmt.Errorf("membership type not found: %w", err)
	}
	t.DefaultPrice = money.FromCents(price)
	return t, err
}

// List returns all types ordered by name.
// PRE: none
// POST: Returns every type (possibly empty)
func (s *TypeSQLiteStore) List(ctx context.Context) ([]domain.Type, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, duration_days, default_price_cents FROM membership_type ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Type
	for rows.Next() {
		var t domain.Type
		var price int64
		if err := rows.Scan(&t.ID, &t.Name, &t.DurationDays, &price); err != nil {
			return nil, err
		}
		t.DefaultPrice = money.FromCents(price)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Save persists a Type (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *TypeSQLiteStore) Save(ctx context.Context, t domain.Type) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO membership_type (id, name, duration_days, default_price_cents) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name,
		   duration_days=excluded.duration_days,
		   default_price_cents=excluded.default_price_cents`,
		t.ID, t.Name, t.DurationDays, t.DefaultPrice.Cents())
	return err
}

// PeriodSQLiteStore implements PeriodStore over any SQLDB.
// Dates are read back at midnight in loc.
type PeriodSQLiteStore struct {
	db  storage.SQLDB
	loc *time.Location
}

// NewPeriodSQLiteStore creates a new membership period store.
func NewPeriodSQLiteStore(db storage.SQLDB, loc *time.Location) *PeriodSQLiteStore {
	if loc == nil {
		loc = time.Local
	}
	return &PeriodSQLiteStore{db: db, loc: loc}
}

const periodSelect = `SELECT p.id, p.member_id, p.type_id, t.name, p.price_cents, p.start_date, p.end_date, p.status
	FROM membership_period p
	LEFT JOIN membership_type t ON t.id = p.type_id`

// GetByID retrieves a Period by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *PeriodSQLiteStore) GetByID(ctx context.Context, id string) (domain.Period, error) {
	row := s.db.QueryRowContext(ctx, periodSelect+" WHERE p.id = ?", id)
	p, err := s.scanPeriod(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Period{}, fmt.Errorf("membership period not found: %w", err)
	}
	return p, err
}

// Save persists a Period (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *PeriodSQLiteStore) Save(ctx context.Context, p domain.Period) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO membership_period (id, member_id, type_id, price_cents, start_date, end_date, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   type_id=excluded.type_id,
		   price_cents=excluded.price_cents,
		   start_date=excluded.start_date,
		   end_date=excluded.end_date,
		   status=excluded.status`,
		p.ID, p.MemberID, p.TypeID, p.Price.Cents(),
		storage.FormatDate(p.StartDate), storage.FormatNullDate(p.EndDate), p.Status)
	return err
}

// List returns periods matching the filter, most recent start first.
// PRE: filter is valid
// POST: Returns matching periods with type names joined
func (s *PeriodSQLiteStore) List(ctx context.Context, filter PeriodFilter) ([]domain.Period, error) {
	var where []string
	var args []any
	if filter.MemberID != "" {
		where = append(where, "p.member_id = ?")
		args = append(args, filter.MemberID)
	}
	if filter.Status != "" {
		where = append(where, "p.status = ?")
		args = append(args, filter.Status)
	}
	if !filter.StartFrom.IsZero() {
		where = append(where, "p.start_date >= ?")
		args = append(args, storage.FormatDate(filter.StartFrom))
	}
	if !filter.StartTo.IsZero() {
		where = append(where, "p.start_date <= ?")
		args = append(args, storage.FormatDate(filter.StartTo))
	}
	if !filter.EndFrom.IsZero() {
		where = append(where, "p.end_date >= ?")
		args = append(args, storage.FormatDate(filter.EndFrom))
	}
	if !filter.EndTo.IsZero() {
		where = append(where, "p.end_date <= ?")
		args = append(args, storage.FormatDate(filter.EndTo))
	}

	query := periodSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.start_date DESC, p.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Period
	for rows.Next() {
		p, err := s.scanPeriod(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// scanPeriod scans a joined period row using the provided scan function.
func (s *PeriodSQLiteStore) scanPeriod(scan func(dest ...any) error) (domain.Period, error) {
	var p domain.Period
	var typeName, endDate sql.NullString
	var price int64
	var startDate string
	if err := scan(&p.ID, &p.MemberID, &p.TypeID, &typeName, &price, &startDate, &endDate, &p.Status); err != nil {
		return domain.Period{}, err
	}
	p.TypeName = typeName.String
	p.Price = money.FromCents(price)
	start, err := storage.ParseDate(startDate, s.loc)
	if err != nil {
		return domain.Period{}, fmt.Errorf("period %s start: %w", p.ID, err)
	}
	p.StartDate = start
	if p.EndDate, err = storage.ParseNullDate(endDate, s.loc); err != nil {
		return domain.Period{}, fmt.Errorf("period %s end: %w", p.ID, err)
	}
	return p, nil
}
