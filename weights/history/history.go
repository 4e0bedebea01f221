// Package history keeps a SQL ledger of weighting runs so past weight
// configurations can be listed and compared without scanning the output
// directory. SQLite (modernc.org/sqlite) is the default store; PostgreSQL is
// reached through the pgx stdlib driver.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

// Driver names a supported ledger backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// DefaultSQLiteDSN is used when the sqlite driver is selected without a DSN.
const DefaultSQLiteDSN = "file:headweight_history.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"

// ErrRunNotFound is returned by Get for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Run is one ledger row: the provenance of an emitted weight configuration
// and the weights it carried.
type Run struct {
	ID           string
	CreatedAt    time.Time
	Method       string
	Formula      string
	Outcome      string
	Source       string
	ArtifactPath string
	Weights      map[string]float64 // nil in List results
}

// Store is an open ledger.
type Store struct {
	db     *sql.DB
	driver Driver
}

// Open opens the ledger and ensures its schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite"
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
	case DriverPostgres:
		drvName = "pgx"
		if dsn == "" {
			return nil, fmt.Errorf("postgres history ledger requires a DSN")
		}
	default:
		return nil, fmt.Errorf("unsupported history driver %q; valid: %s, %s", driver, DriverSQLite, DriverPostgres)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening history ledger: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to history ledger: %w", err)
	}
	schema := schemaSQLite
	if driver == DriverPostgres {
		schema = schemaPostgres
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &Store{db: db, driver: driver}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts r and its weights in one transaction.
func (s *Store) Record(ctx context.Context, r Run) error {
	if r.ID == "" {
		return fmt.Errorf("recording run: empty run ID")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", r.ID, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if _, err := tx.ExecContext(ctx, s.rebind(
		`INSERT INTO runs (id, created_at, method, formula, outcome, source, artifact_path) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		r.ID, r.CreatedAt.UnixNano(), r.Method, r.Formula, r.Outcome, r.Source, r.ArtifactPath); err != nil {
		return fmt.Errorf("recording run %s: %w", r.ID, err)
	}

	heads := make([]string, 0, len(r.Weights))
	for h := range r.Weights {
		heads = append(heads, h)
	}
	sort.Strings(heads)
	insertWeight := s.rebind(`INSERT INTO run_weights (run_id, head, weight) VALUES (?, ?, ?)`)
	for _, h := range heads {
		if _, err := tx.ExecContext(ctx, insertWeight, r.ID, h, r.Weights[h]); err != nil {
			return fmt.Errorf("recording weight of %s for run %s: %w", h, r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recording run %s: %w", r.ID, err)
	}
	return nil
}

// List returns up to limit runs, newest first. limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, created_at, method, formula, outcome, source, artifact_path FROM runs ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Get returns the run with the given ID including its weights, or
// ErrRunNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, created_at, method, formula, outcome, source, artifact_path FROM runs WHERE id = ?`), id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT head, weight FROM run_weights WHERE run_id = ?`), id)
	if err != nil {
		return nil, fmt.Errorf("loading weights of run %s: %w", id, err)
	}
	defer rows.Close()
	r.Weights = make(map[string]float64)
	for rows.Next() {
		var head string
		var w float64
		if err := rows.Scan(&head, &w); err != nil {
			return nil, fmt.Errorf("loading weights of run %s: %w", id, err)
		}
		r.Weights[head] = w
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading weights of run %s: %w", id, err)
	}
	return &r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var created int64
	if err := sc.Scan(&r.ID, &created, &r.Method, &r.Formula, &r.Outcome, &r.Source, &r.ArtifactPath); err != nil {
		return Run{}, err
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	return r, nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  created_at INTEGER NOT NULL,
  method TEXT NOT NULL,
  formula TEXT NOT NULL,
  outcome TEXT NOT NULL,
  source TEXT NOT NULL DEFAULT '',
  artifact_path TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS run_weights (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  head TEXT NOT NULL,
  weight REAL NOT NULL,
  PRIMARY KEY (run_id, head)
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  created_at BIGINT NOT NULL,
  method TEXT NOT NULL,
  formula TEXT NOT NULL,
  outcome TEXT NOT NULL,
  source TEXT NOT NULL DEFAULT '',
  artifact_path TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS run_weights (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  head TEXT NOT NULL,
  weight DOUBLE PRECISION NOT NULL,
  PRIMARY KEY (run_id, head)
);
`
