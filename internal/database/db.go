// Package database opens the SQLite stores behind the video catalog and the
// market game sessions and runs their housekeeping.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schemas/*.sql
var schemaFS embed.FS

// schemaFiles maps a store name to its embedded schema.
var schemaFiles = map[string]string{
	"catalog":  "catalog_schema.sql",
	"sessions": "sessions_schema.sql",
}

// Profile trades durability for speed.
type Profile string

const (
	// ProfileStandard suits the video catalog: fsync at checkpoints.
	ProfileStandard Profile = "standard"
	// ProfileCache suits game sessions, which are cheap to lose.
	ProfileCache Profile = "cache"
)

// profilePragmas holds the per-profile PRAGMAs appended after journal_mode.
var profilePragmas = map[Profile][]string{
	ProfileStandard: {"synchronous(NORMAL)", "auto_vacuum(INCREMENTAL)", "temp_store(MEMORY)"},
	ProfileCache:    {"synchronous(OFF)", "auto_vacuum(FULL)", "temp_store(MEMORY)"},
}

var sharedPragmas = []string{
	"foreign_keys(1)",
	"wal_autocheckpoint(1000)",
	"cache_size(-64000)",
	"busy_timeout(5000)",
}

// DB is one named SQLite store.
type DB struct {
	conn *sql.DB
	path string
	name string
}

// Config describes a store to open. Name selects the schema applied by Migrate.
type Config struct {
	Path    string
	Profile Profile
	Name    string
}

// New opens the store, creating its parent directory when needed, and pings it.
func New(cfg Config) (*DB, error) {
	// file: URIs are passed through untouched
	if !strings.HasPrefix(cfg.Path, "file:") {
		abs, err := filepath.Abs(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("resolve path for %s: %w", cfg.Name, err)
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			return nil, fmt.Errorf("create directory for %s: %w", cfg.Name, err)
		}
		cfg.Path = abs
	}
	if cfg.Profile == "" {
		cfg.Profile = ProfileStandard
	}

	conn, err := sql.Open("sqlite", buildConnectionString(cfg.Path, cfg.Profile))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Name, err)
	}
	tunePool(conn, cfg.Profile)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Name, err)
	}

	return &DB{conn: conn, path: cfg.Path, name: cfg.Name}, nil
}

func buildConnectionString(path string, profile Profile) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	pragmas := append([]string{"journal_mode(WAL)"}, profilePragmas[profile]...)
	pragmas = append(pragmas, sharedPragmas...)

	var b strings.Builder
	b.WriteString(path)
	for i, p := range pragmas {
		if i == 0 {
			b.WriteString(sep)
		} else {
			b.WriteString("&")
		}
		b.WriteString("_pragma=")
		b.WriteString(p)
	}
	return b.String()
}

func tunePool(conn *sql.DB, profile Profile) {
	open, idle := 25, 5
	if profile == ProfileCache {
		open, idle = 10, 2
	}
	conn.SetMaxOpenConns(open)
	conn.SetMaxIdleConns(idle)
	conn.SetConnMaxLifetime(24 * time.Hour)
	conn.SetConnMaxIdleTime(30 * time.Minute)
}

// Close closes the store.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn exposes the pool to repositories.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Name is the store name used in logs and status output.
func (db *DB) Name() string {
	return db.name
}

// Migrate applies the store's embedded schema. Stores without one are left alone.
func (db *DB) Migrate() error {
	if _, ok := schemaFiles[db.name]; !ok {
		return nil
	}
	return ApplySchema(db.conn, db.name)
}

// ApplySchema runs the named schema on conn in one transaction.
// Schemas only use IF NOT EXISTS, so re-running is harmless.
func ApplySchema(conn *sql.DB, name string) error {
	file, ok := schemaFiles[name]
	if !ok {
		return fmt.Errorf("no schema for database %q", name)
	}

	ddl, err := schemaFS.ReadFile("schemas/" + file)
	if err != nil {
		return fmt.Errorf("read schema %s: %w", file, err)
	}

	return WithTransaction(conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec(string(ddl)); err != nil {
			return fmt.Errorf("apply schema %s to %s: %w", file, name, err)
		}
		return nil
	})
}

// WithTransaction commits when fn returns nil and rolls back on error or panic.
func WithTransaction(conn *sql.DB, fn func(*sql.Tx) error) (err error) {
	if conn == nil {
		return fmt.Errorf("database connection is nil")
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			err = fmt.Errorf("panic in transaction: %v", p)
			return
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("transaction failed: %w (rollback: %v)", err, rbErr)
				return
			}
			err = fmt.Errorf("transaction failed: %w", err)
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("commit transaction: %w", cErr)
		}
	}()

	return fn(tx)
}

// HealthCheck pings the store and runs PRAGMA integrity_check.
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: ping: %w", db.name, err)
	}

	var result string
	if err := db.conn.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("%s: integrity check: %w", db.name, err)
	}
	if result != "ok" {
		return fmt.Errorf("%s: integrity check reported %q", db.name, result)
	}
	return nil
}

// WALCheckpoint runs a checkpoint in the given mode, TRUNCATE when empty.
func (db *DB) WALCheckpoint(mode string) error {
	if mode == "" {
		mode = "TRUNCATE"
	}
	if _, err := db.conn.Exec(fmt.Sprintf("PRAGMA wal_checkpoint(%s)", mode)); err != nil {
		return fmt.Errorf("%s: wal checkpoint: %w", db.name, err)
	}
	return nil
}

// Vacuum rebuilds the file to drop free pages.
func (db *DB) Vacuum() error {
	if _, err := db.conn.Exec("VACUUM"); err != nil {
		return fmt.Errorf("%s: vacuum: %w", db.name, err)
	}
	return nil
}

// VacuumInto writes a consistent snapshot to dest, which must not exist yet.
func (db *DB) VacuumInto(ctx context.Context, dest string) error {
	if _, err := db.conn.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return fmt.Errorf("%s: vacuum into %s: %w", db.name, dest, err)
	}
	return nil
}

// Stats describes the store's on-disk footprint.
type Stats struct {
	SizeBytes     int64
	WALSizeBytes  int64
	PageCount     int64
	PageSize      int64
	FreelistCount int64
}

// GetStats reads file sizes and page counters.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	if info, err := os.Stat(db.path); err == nil {
		stats.SizeBytes = info.Size()
	}
	if info, err := os.Stat(db.path + "-wal"); err == nil {
		stats.WALSizeBytes = info.Size()
	}

	for pragma, dst := range map[string]*int64{
		"page_count":     &stats.PageCount,
		"page_size":      &stats.PageSize,
		"freelist_count": &stats.FreelistCount,
	} {
		if err := db.conn.QueryRow("PRAGMA " + pragma).Scan(dst); err != nil {
			return nil, fmt.Errorf("%s: read %s: %w", db.name, pragma, err)
		}
	}
	return stats, nil
}
