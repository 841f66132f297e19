package sessionlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"pomodoro_tui/internal/pomodoro"
	"pomodoro_tui/internal/store"
)

const DefaultListLimit = 50

var _ pomodoro.SessionLog = (*Repository)(nil)

// Repository stamps every record it starts with the pid of its process so
// stale recovery can tell its own leftovers from another live process's.
type Repository struct {
	db  *sql.DB
	now func() time.Time
	pid int
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now, pid: os.Getpid()}
}

// Start inserts a running record and returns its id.
func (r *Repository) Start(ctx context.Context, taskID *int64, phase pomodoro.Phase, plannedSeconds int) (string, error) {
	id := uuid.NewString()
	var task any
	if taskID != nil {
		task = *taskID
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, task_id, phase, planned_seconds, actual_seconds, started_at, status, owner_pid)
		 VALUES (?, ?, ?, ?, 0, ?, ?, ?)`,
		id, task, string(phase), plannedSeconds, store.FormatTime(r.now()), string(StatusRunning), r.pid,
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

func (r *Repository) Complete(ctx context.Context, id string, actualSeconds int) error {
	return r.finish(ctx, id, StatusCompleted, actualSeconds)
}

func (r *Repository) Abandon(ctx context.Context, id string, actualSeconds int) error {
	return r.finish(ctx, id, StatusAbandoned, actualSeconds)
}

func (r *Repository) finish(ctx context.Context, id string, status Status, actualSeconds int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions
		 SET status = ?, actual_seconds = MAX(?, 0), ended_at = ?
		 WHERE id = ? AND status = ?`,
		string(status), actualSeconds, store.FormatTime(r.now()), id, string(StatusRunning),
	)
	if err != nil {
		return fmt.Errorf("%s session %s: %w", status, id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("running session %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// AbandonStale closes records left running by processes that are gone.
// Records owned by another pid for which alive reports true are left alone,
// so a second instance does not cut short the first one's run. Records
// without an owner and those of this pid are always closed. A nil alive
// treats every other pid as gone.
func (r *Repository) AbandonStale(ctx context.Context, alive func(pid int) bool) (int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, owner_pid FROM sessions WHERE status = ?", string(StatusRunning))
	if err != nil {
		return 0, fmt.Errorf("abandon stale sessions: %w", err)
	}
	var stale []string
	for rows.Next() {
		var (
			id  string
			pid int
		)
		if err := rows.Scan(&id, &pid); err != nil {
			rows.Close()
			return 0, fmt.Errorf("abandon stale sessions: %w", err)
		}
		if pid != 0 && pid != r.pid && alive != nil && alive(pid) {
			continue
		}
		stale = append(stale, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("abandon stale sessions: %w", err)
	}
	rows.Close()

	var n int64
	endedAt := store.FormatTime(r.now())
	for _, id := range stale {
		result, err := r.db.ExecContext(ctx,
			"UPDATE sessions SET status = ?, ended_at = ? WHERE id = ? AND status = ?",
			string(StatusAbandoned), endedAt, id, string(StatusRunning),
		)
		if err != nil {
			return n, fmt.Errorf("abandon stale session %s: %w", id, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return n, err
		}
		n += affected
	}
	return n, nil
}

const selectColumns = `SELECT s.id, s.task_id, s.phase, s.planned_seconds, s.actual_seconds,
	s.started_at, s.ended_at, s.status, COALESCE(t.title, '')
	FROM sessions s
	LEFT JOIN tasks t ON s.task_id = t.id`

// List returns the most recent records first. A non-positive limit uses
// DefaultListLimit.
func (r *Repository) List(ctx context.Context, limit int) ([]SessionWithTask, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return r.query(ctx, selectColumns+" ORDER BY s.started_at DESC LIMIT ?", limit)
}

func (r *Repository) ListByTask(ctx context.Context, taskID int64) ([]SessionWithTask, error) {
	return r.query(ctx, selectColumns+" WHERE s.task_id = ? ORDER BY s.started_at DESC", taskID)
}

func (r *Repository) Get(ctx context.Context, id string) (*SessionWithTask, error) {
	sessions, err := r.query(ctx, selectColumns+" WHERE s.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("session %s: %w", id, store.ErrNotFound)
	}
	return &sessions[0], nil
}

// SummarizeSince counts completed work phases that started at or after since.
func (r *Repository) SummarizeSince(ctx context.Context, since time.Time) (Summary, error) {
	var s Summary
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(actual_seconds), 0)
		 FROM sessions
		 WHERE phase = ? AND status = ? AND started_at >= ?`,
		string(pomodoro.PhaseWork), string(StatusCompleted), store.FormatTime(since),
	).Scan(&s.CompletedWork, &s.FocusSeconds)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize sessions: %w", err)
	}
	return s, nil
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]SessionWithTask, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionWithTask
	for rows.Next() {
		var s SessionWithTask
		var taskID sql.NullInt64
		var phase, status, startedAt string
		var endedAt sql.NullString
		if err := rows.Scan(
			&s.ID, &taskID, &phase, &s.PlannedSeconds, &s.ActualSeconds,
			&startedAt, &endedAt, &status, &s.TaskTitle,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.Phase = pomodoro.Phase(phase)
		s.Status = Status(status)
		if taskID.Valid {
			id := taskID.Int64
			s.TaskID = &id
		}
		if s.StartedAt, err = store.ParseTime(startedAt); err != nil {
			return nil, fmt.Errorf("parse session started_at: %w", err)
		}
		if endedAt.Valid {
			at, err := store.ParseTime(endedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parse session ended_at: %w", err)
			}
			s.EndedAt = &at
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}
