// Package persist snapshots mock collections to SQLite or Postgres.
//
// Each collection is stored as one JSON array in a single "state" table keyed
// by bucket name. The in-memory collection stays authoritative for reads; the
// database is written after every successful mutation and read once at startup.
package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// Supported drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnsupportedDriver is returned by Open for an unknown driver name.
var ErrUnsupportedDriver = errors.New("unsupported storage driver")

type dialect struct {
	sqlDriver string
	ddl       string
	upsert    string
	selectOne string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		sqlDriver: "sqlite",
		ddl: `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`,
		upsert:    `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		selectOne: `SELECT payload FROM state WHERE bucket = ?`,
	},
	DriverPostgres: {
		sqlDriver: "pgx",
		ddl: `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BYTEA NOT NULL
	)`,
		upsert:    `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`,
		selectOne: `SELECT payload FROM state WHERE bucket = $1`,
	},
}

// Snapshotter reads and writes per-bucket payloads.
type Snapshotter struct {
	db      *sql.DB
	driver  string
	dialect dialect
}

// Open connects to the database for driver and ensures the state table exists.
// For sqlite, dsn is a file path; parent directories are created as needed.
func Open(ctx context.Context, driver, dsn string) (*Snapshotter, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	if dsn == "" {
		return nil, fmt.Errorf("%s: dsn is required", driver)
	}

	if driver == DriverSQLite {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
				return nil, fmt.Errorf("create dirs: %w", err)
			}
		}
	}

	db, err := sql.Open(d.sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, d.ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}

	return &Snapshotter{db: db, driver: driver, dialect: d}, nil
}

// Driver returns the driver name the snapshotter was opened with.
func (s *Snapshotter) Driver() string { return s.driver }

// Load returns the payload stored for bucket, or nil when none exists.
func (s *Snapshotter) Load(ctx context.Context, bucket string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, s.dialect.selectOne, bucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", bucket, err)
	}
	return payload, nil
}

// Save replaces the payload stored for bucket.
func (s *Snapshotter) Save(ctx context.Context, bucket string, payload []byte) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, s.dialect.upsert, bucket, payload); err != nil {
		return fmt.Errorf("upsert %s: %w", bucket, err)
	}
	return tx.Commit()
}

// Close closes the database.
func (s *Snapshotter) Close() error {
	return s.db.Close()
}
