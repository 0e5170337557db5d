package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is one schema step. Statements run in order inside a transaction.
type migration struct {
	version    int
	name       string
	statements []string
}

// migrations is the ordered schema history. Append only.
var migrations = []migration{
	{
		version: 1,
		name:    "base_schema",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS staff_account (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL DEFAULT '',
				role TEXT NOT NULL,
				created_at TEXT NOT NULL,
				failed_logins INTEGER NOT NULL DEFAULT 0,
				locked_until TEXT
			)`,
			`CREATE TABLE IF NOT EXISTS member (
				id TEXT PRIMARY KEY,
				card_code TEXT NOT NULL UNIQUE,
				full_name TEXT NOT NULL,
				phone TEXT,
				email TEXT,
				status TEXT NOT NULL,
				note TEXT,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_member_created_at ON member(created_at)`,
			`CREATE TABLE IF NOT EXISTS membership_type (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				duration_days INTEGER NOT NULL DEFAULT 0,
				default_price_cents BIGINT NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS membership_period (
				id TEXT PRIMARY KEY,
				member_id TEXT NOT NULL REFERENCES member(id),
				type_id TEXT NOT NULL,
				price_cents BIGINT NOT NULL,
				start_date TEXT NOT NULL,
				end_date TEXT,
				status TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_period_member ON membership_period(member_id)`,
			`CREATE INDEX IF NOT EXISTS idx_period_start ON membership_period(start_date)`,
			`CREATE INDEX IF NOT EXISTS idx_period_end ON membership_period(end_date)`,
			`CREATE TABLE IF NOT EXISTS payment (
				id TEXT PRIMARY KEY,
				member_id TEXT NOT NULL REFERENCES member(id),
				period_id TEXT REFERENCES membership_period(id),
				amount_cents BIGINT NOT NULL,
				paid_at TEXT NOT NULL,
				method TEXT NOT NULL DEFAULT 'cash',
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_payment_member ON payment(member_id)`,
			`CREATE INDEX IF NOT EXISTS idx_payment_paid_at ON payment(paid_at)`,
			`CREATE TABLE IF NOT EXISTS visit (
				id TEXT PRIMARY KEY,
				member_id TEXT NOT NULL REFERENCES member(id),
				arrived_at TEXT NOT NULL,
				departed_at TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_visit_member ON visit(member_id)`,
			`CREATE INDEX IF NOT EXISTS idx_visit_arrived_at ON visit(arrived_at)`,
			`CREATE TABLE IF NOT EXISTS trainer (
				id TEXT PRIMARY KEY,
				member_id TEXT NOT NULL UNIQUE REFERENCES member(id),
				note TEXT
			)`,
			`CREATE TABLE IF NOT EXISTS training_session (
				id TEXT PRIMARY KEY,
				trainer_id TEXT NOT NULL REFERENCES trainer(id),
				title TEXT NOT NULL,
				description TEXT,
				starts_at TEXT NOT NULL,
				ends_at TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_session_trainer ON training_session(trainer_id)`,
			`CREATE INDEX IF NOT EXISTS idx_session_starts_at ON training_session(starts_at)`,
			`CREATE TABLE IF NOT EXISTS session_roster (
				id TEXT PRIMARY KEY,
				session_id TEXT NOT NULL REFERENCES training_session(id),
				member_id TEXT NOT NULL REFERENCES member(id),
				status TEXT NOT NULL,
				UNIQUE (session_id, member_id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_roster_member ON session_roster(member_id)`,
			`CREATE TABLE IF NOT EXISTS post (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				content TEXT NOT NULL,
				image_url TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS profile (
				id TEXT PRIMARY KEY,
				full_name TEXT,
				phone TEXT,
				avatar_url TEXT
			)`,
		},
	},
}

// LatestSchemaVersion returns the version the schema is migrated to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// InitDB brings the schema up to date.
// PRE: db is a valid database connection
// POST: All migrations newer than the recorded version are applied
func InitDB(db *sql.DB, dialect Dialect) error {
	if dialect == DialectSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := currentVersion(db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(db, dialect, m); err != nil {
			return err
		}
		slog.Info("schema_migrated", "version", m.version, "name", m.name)
	}
	return nil
}

func currentVersion(db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(v.Int64), nil
}

func applyMigration(db *sql.DB, dialect Dialect, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	if _, err := tx.Exec(dialect.Rebind("INSERT INTO schema_version (version) VALUES (?)"), m.version); err != nil {
		return fmt.Errorf("migration %d (%s): record version: %w", m.version, m.name, err)
	}
	return tx.Commit()
}
