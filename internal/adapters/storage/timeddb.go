package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"zefit/internal/adapters/http/perf"
)

// Execer is the query surface shared by connections and transactions.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx is a transaction handed out by SQLDB.BeginTx.
type Tx interface {
	Execer
	Commit() error
	Rollback() error
}

// SQLDB is the database interface used by all stores.
type SQLDB interface {
	Execer
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
}

// DefaultSlowQueryMs is the default threshold for slow query warnings.
const DefaultSlowQueryMs = 50

var slowQueryMs atomic.Int64

func init() {
	slowQueryMs.Store(DefaultSlowQueryMs)
}

// SetSlowQueryThreshold changes the slow-query warning threshold.
// PRE: ms > 0
// POST: later queries compare against ms
func SetSlowQueryThreshold(ms int) {
	if ms > 0 {
		slowQueryMs.Store(int64(ms))
	}
}

// TimedDB wraps a *sql.DB to log slow queries, record them to a collector,
// and rebind placeholders for the configured dialect.
type TimedDB struct {
	db        *sql.DB
	dialect   Dialect
	collector *perf.Collector
}

// Compile-time check that *TimedDB satisfies SQLDB.
var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps a *sql.DB with timing instrumentation.
// PRE: db is a valid database connection
// POST: Returns a TimedDB that logs slow queries and records to collector (may be nil)
func NewTimedDB(db *sql.DB, dialect Dialect, collector *perf.Collector) *TimedDB {
	return &TimedDB{db: db, dialect: dialect, collector: collector}
}

// RawDB returns the underlying *sql.DB (needed for migrations and pool config).
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// Dialect returns the SQL flavour of the connection.
func (t *TimedDB) Dialect() Dialect {
	return t.dialect
}

// ExecContext wraps sql.DB.ExecContext with timing.
// PRE: ctx is valid, query is non-empty
// POST: query executed, timing recorded to collector
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, t.dialect.Rebind(query), args...)
	t.logQuery("exec", query, start)
	return result, err
}

// QueryContext wraps sql.DB.QueryContext with timing.
// PRE: ctx is valid, query is non-empty
// POST: query executed, timing recorded to collector
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, t.dialect.Rebind(query), args...)
	t.logQuery("query", query, start)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
// PRE: ctx is valid, query is non-empty
// POST: query executed, timing recorded to collector
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, t.dialect.Rebind(query), args...)
	t.logQuery("query_row", query, start)
	return row
}

// BeginTx starts a transaction whose statements are timed and rebound too.
// PRE: ctx is valid
// POST: transaction started, timing recorded to collector
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.logQuery("begin", "BEGIN", start)
	if err != nil {
		return nil, err
	}
	return &timedTx{tx: tx, parent: t}, nil
}

// Close closes the underlying database connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// Ping verifies the database connection.
func (t *TimedDB) Ping(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// logQuery logs and optionally records a query timing.
func (t *TimedDB) logQuery(op, query string, start time.Time) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	stmt := statementLabel(query)

	if durationMs >= float64(slowQueryMs.Load()) {
		slog.Warn("slow_query",
			"op", op,
			"statement", stmt,
			"duration_ms", durationMs,
		)
	} else {
		slog.Debug("query",
			"op", op,
			"statement", stmt,
			"duration_ms", durationMs,
		)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Path:       stmt,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// statementLabel condenses a query to its verb and main table, e.g. "SELECT member".
func statementLabel(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	verb := strings.ToUpper(fields[0])
	var marker string
	switch verb {
	case "SELECT", "DELETE":
		marker = "FROM"
	case "INSERT":
		marker = "INTO"
	case "UPDATE":
		if len(fields) > 1 {
			return verb + " " + fields[1]
		}
		return verb
	default:
		return verb
	}
	for i := 1; i < len(fields)-1; i++ {
		if strings.EqualFold(fields[i], marker) {
			return verb + " " + strings.Trim(fields[i+1], "(,")
		}
	}
	return verb
}

// timedTx applies the parent's rebinding and timing to a transaction.
type timedTx struct {
	tx     *sql.Tx
	parent *TimedDB
}

func (x *timedTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := x.tx.ExecContext(ctx, x.parent.dialect.Rebind(query), args...)
	x.parent.logQuery("tx_exec", query, start)
	return result, err
}

func (x *timedTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := x.tx.QueryContext(ctx, x.parent.dialect.Rebind(query), args...)
	x.parent.logQuery("tx_query", query, start)
	return rows, err
}

func (x *timedTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := x.tx.QueryRowContext(ctx, x.parent.dialect.Rebind(query), args...)
	x.parent.logQuery("tx_query_row", query, start)
	return row
}

func (x *timedTx) Commit() error {
	return x.tx.Commit()
}

func (x *timedTx) Rollback() error {
	return x.tx.Rollback()
}
