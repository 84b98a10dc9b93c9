// Package store persists per-scenario run results so past load runs can be
// inspected with the history command. SQLite is the default backend;
// PostgreSQL can be configured for shared history.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DbFileName is the default filename for the run history database.
const DbFileName = "loadsheet.db"

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and configures the history backend.
type Config struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	// SQLite file path (sqlite driver).
	Path string `mapstructure:"path" yaml:"path"`
	// Connection string (postgres driver).
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// Record is one persisted scenario outcome.
type Record struct {
	ID           int64
	RunAt        time.Time
	Scenario     string
	Status       string
	ExitCode     int
	DurationMs   int64
	Iterations   float64
	ChecksPassed float64
	ChecksFailed float64
	FailureRate  float64
}

// Store wraps the history database. Use Open to connect.
type Store struct {
	DB     *sql.DB
	driver string
}

// Open connects to the configured backend and ensures the schema exists.
func Open(cfg Config) (*Store, error) {
	driver := strings.TrimSpace(cfg.Driver)
	if driver == "" {
		driver = DriverSqlite
	}

	var db *sql.DB
	var err error
	switch driver {
	case DriverSqlite:
		path := cfg.Path
		if path == "" {
			path = DbFileName
		}
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_fk=1", path)
		db, err = sql.Open("sqlite", dsn)
	case DriverPostgres:
		if strings.TrimSpace(cfg.DSN) == "" {
			return nil, errors.New("store: postgres driver requires dsn")
		}
		db, err = sql.Open("pgx", cfg.DSN)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	st := &Store{DB: db, driver: driver}
	if err := st.EnsureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// EnsureSchema creates the run history table when absent. Idempotent.
func (s *Store) EnsureSchema() error {
	var ddl string
	if s.driver == DriverPostgres {
		ddl = `CREATE TABLE IF NOT EXISTS load_runs (
			id BIGSERIAL PRIMARY KEY,
			run_at TEXT NOT NULL,
			scenario TEXT NOT NULL,
			status TEXT NOT NULL,
			exit_code INTEGER NOT NULL,
			duration_ms BIGINT NOT NULL,
			iterations DOUBLE PRECISION NOT NULL DEFAULT 0,
			checks_passed DOUBLE PRECISION NOT NULL DEFAULT 0,
			checks_failed DOUBLE PRECISION NOT NULL DEFAULT 0,
			failure_rate DOUBLE PRECISION NOT NULL DEFAULT 0
		)`
	} else {
		ddl = `CREATE TABLE IF NOT EXISTS load_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_at TEXT NOT NULL,
			scenario TEXT NOT NULL,
			status TEXT NOT NULL,
			exit_code INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			iterations REAL NOT NULL DEFAULT 0,
			checks_passed REAL NOT NULL DEFAULT 0,
			checks_failed REAL NOT NULL DEFAULT 0,
			failure_rate REAL NOT NULL DEFAULT 0
		)`
	}
	_, err := s.DB.Exec(ddl)
	return err
}

// RecordRun inserts one scenario outcome.
func (s *Store) RecordRun(rec Record) error {
	runAt := rec.RunAt
	if runAt.IsZero() {
		runAt = time.Now().UTC()
	}
	q := s.rebind(`INSERT INTO load_runs
		(run_at, scenario, status, exit_code, duration_ms, iterations, checks_passed, checks_failed, failure_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.DB.Exec(q,
		runAt.Format(time.RFC3339),
		rec.Scenario,
		rec.Status,
		rec.ExitCode,
		rec.DurationMs,
		rec.Iterations,
		rec.ChecksPassed,
		rec.ChecksFailed,
		rec.FailureRate,
	)
	return err
}

// ListRecent returns the most recent records, newest first.
func (s *Store) ListRecent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	q := s.rebind(`SELECT id, run_at, scenario, status, exit_code, duration_ms,
		iterations, checks_passed, checks_failed, failure_rate
		FROM load_runs ORDER BY id DESC LIMIT ?`)
	rows, err := s.DB.Query(q, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var rec Record
		var runAt string
		if err := rows.Scan(&rec.ID, &runAt, &rec.Scenario, &rec.Status, &rec.ExitCode,
			&rec.DurationMs, &rec.Iterations, &rec.ChecksPassed, &rec.ChecksFailed, &rec.FailureRate); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, runAt); err == nil {
			rec.RunAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// rebind converts ? placeholders to $n for postgres.
func (s *Store) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
