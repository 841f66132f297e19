package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by repositories when a row does not exist.
var ErrNotFound = errors.New("not found")

// Open opens the SQLite database at path, creating its directory and schema
// when needed.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(8000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(30 * time.Second)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func initSchema(db *sql.DB) error {
	tasksQuery := `
	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		estimated_pomodoros INTEGER NOT NULL DEFAULT 1,
		completed_pomodoros INTEGER NOT NULL DEFAULT 0,
		completed INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		completed_at TEXT
	)
	`
	if _, err := db.Exec(tasksQuery); err != nil {
		return fmt.Errorf("create tasks: %w", err)
	}

	sessionsQuery := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		task_id INTEGER,
		phase TEXT NOT NULL,
		planned_seconds INTEGER NOT NULL,
		actual_seconds INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		ended_at TEXT,
		status TEXT NOT NULL,
		owner_pid INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE SET NULL
	)
	`
	if _, err := db.Exec(sessionsQuery); err != nil {
		return fmt.Errorf("create sessions: %w", err)
	}

	// Databases created before owner_pid existed get it added in place.
	if err := addColumn(db, "sessions", "owner_pid", "INTEGER NOT NULL DEFAULT 0"); err != nil {
		return err
	}

	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions (started_at)`)
	if err != nil {
		return fmt.Errorf("create sessions index: %w", err)
	}
	return nil
}

func addColumn(db *sql.DB, table, column, decl string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("inspect %s: %w", table, err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	rows.Close()

	if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl)); err != nil {
		return fmt.Errorf("add %s.%s: %w", table, column, err)
	}
	return nil
}

// ParseTime reads a timestamp written by FormatTime.
func ParseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err == nil {
		return t.UTC(), nil
	}
	t, err = time.Parse(time.RFC3339, raw)
	if err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, err
}

// timeLayout keeps a fixed-width fraction so text columns sort in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime is the column encoding for timestamps.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
