package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func TestOpenCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pomodoro.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%q): %v", path, err)
	}
	defer db.Close()

	for _, table := range []string{"tasks", "sessions"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pomodoro.db")
	for i := 0; i < 2; i++ {
		db, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		db.Close()
	}
}

func TestOpenAddsOwnerColumnToOldSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.Exec(`CREATE TABLE sessions (
		id TEXT PRIMARY KEY,
		task_id INTEGER,
		phase TEXT NOT NULL,
		planned_seconds INTEGER NOT NULL,
		actual_seconds INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		ended_at TEXT,
		status TEXT NOT NULL
	)`)
	if err == nil {
		_, err = db.Exec(`INSERT INTO sessions (id, phase, planned_seconds, started_at, status)
			VALUES ('old', 'work', 60, '2024-01-01T00:00:00Z', 'running')`)
	}
	db.Close()
	if err != nil {
		t.Fatal(err)
	}

	db, err = Open(path)
	if err != nil {
		t.Fatalf("Open(old schema): %v", err)
	}
	defer db.Close()

	var pid int
	if err := db.QueryRow(`SELECT owner_pid FROM sessions WHERE id = 'old'`).Scan(&pid); err != nil {
		t.Fatalf("owner_pid missing after migration: %v", err)
	}
	if pid != 0 {
		t.Fatalf("owner_pid = %d, want 0 for pre-existing rows", pid)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	in := time.Date(2024, 5, 1, 9, 30, 15, 123456789, time.FixedZone("x", 3600))
	out, err := ParseTime(FormatTime(in))
	if err != nil {
		t.Fatal(err)
	}
	if !out.Equal(in) {
		t.Fatalf("ParseTime(FormatTime(%v)) = %v", in, out)
	}

	if got, err := ParseTime("2024-05-01T09:30:15Z"); err != nil || got.Second() != 15 {
		t.Fatalf("ParseTime(RFC3339) = %v, %v", got, err)
	}
	if got, err := ParseTime(""); err != nil || !got.IsZero() {
		t.Fatalf("ParseTime(\"\") = %v, %v", got, err)
	}
	if _, err := ParseTime("yesterday"); err == nil {
		t.Fatal("expected error for garbage timestamp")
	}
}
