package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not map to a
	// bindvar style by default.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Store holds all of Plank's durable state: users, API keys, projects,
// tasks, comments, bugs, appointments, meetings, and settings. The default
// backend is an embedded SQLite file; shared deployments can point the same
// store at PostgreSQL or MySQL via Options.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Options selects the storage backend.
type Options struct {
	// Driver is one of "sqlite" (default), "postgres", or "mysql".
	Driver string
	// DSN is the connection string for postgres/mysql backends.
	DSN string
	// DataDir is the directory for the SQLite database file. Empty means
	// an in-memory database (used by tests).
	DataDir string
}

// Open connects to the configured backend and runs migrations.
func Open(opts Options) (*Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = "sqlite"
	}

	var db *sqlx.DB
	var err error

	switch driver {
	case "sqlite":
		var dsn string
		if opts.DataDir == "" {
			dsn = ":memory:?_journal_mode=WAL"
		} else {
			if err := os.MkdirAll(opts.DataDir, 0755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
			dsn = filepath.Join(opts.DataDir, "plank.db") + "?_journal_mode=WAL&_busy_timeout=5000"
		}
		db, err = sqlx.Connect("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	case "postgres":
		db, err = sqlx.Connect("pgx", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
	case "mysql":
		db, err = sqlx.Connect("mysql", mysqlDSN(opts.DSN))
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// mysqlDSN forces parseTime so DATETIME columns scan into time.Time.
func mysqlDSN(dsn string) string {
	if strings.Contains(dsn, "parseTime") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "parseTime=true"
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Driver-aware query helpers
//
// Queries are written with `?` placeholders and rebound for the active
// driver; pgx wants $N. Named queries go through sqlx's own binding and need
// no rewrite.
// ---------------------------------------------------------------------------

func (s *Store) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return s.db.GetContext(ctx, dest, s.db.Rebind(query), args...)
}

func (s *Store) sel(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return s.db.SelectContext(ctx, dest, s.db.Rebind(query), args...)
}

func (s *Store) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.db.Rebind(query), args...)
}

// namedInsert runs a named INSERT and returns the new row's ID. The pgx
// stdlib driver does not implement LastInsertId, so postgres inserts fetch
// the ID through RETURNING instead.
func (s *Store) namedInsert(ctx context.Context, query string, arg interface{}) (int64, error) {
	if s.driver == "postgres" {
		rows, err := s.db.NamedQueryContext(ctx, query+" RETURNING id", arg)
		if err != nil {
			return 0, err
		}
		defer rows.Close()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return 0, err
			}
			return 0, sql.ErrNoRows
		}
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	result, err := s.db.NamedExecContext(ctx, query, arg)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ---------------------------------------------------------------------------
// Settings (key-value)
// ---------------------------------------------------------------------------

// GetSetting returns the value for a settings key, or ErrNotFound.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	if err := s.get(ctx, &value, "SELECT value FROM settings WHERE name = ?", key); err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

// SetSetting upserts a settings key.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	q := `INSERT INTO settings (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`
	if s.driver == "mysql" {
		q = `INSERT INTO settings (name, value) VALUES (?, ?)
			ON DUPLICATE KEY UPDATE value = VALUES(value)`
	}
	if _, err := s.exec(ctx, q, key, value); err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}

// AllSettings returns every settings key-value pair.
func (s *Store) AllSettings(ctx context.Context) (map[string]string, error) {
	type row struct {
		Name  string `db:"name"`
		Value string `db:"value"`
	}
	var rows []row
	if err := s.sel(ctx, &rows, "SELECT name, value FROM settings ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Name] = r.Value
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Utility
// ---------------------------------------------------------------------------

// HashAPIKey returns the hex-encoded SHA-256 hash of a raw API key string.
// Keys carry 256 bits of entropy, so a plain hash is enough here; passwords
// go through HashPassword instead.
func HashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

// HashPassword derives a bcrypt hash for a user password. Interactive
// passwords are low entropy and need an adaptive KDF, unlike API keys.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
