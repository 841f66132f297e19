package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pomodoro_tui/internal/store"
)

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

const selectColumns = `SELECT id, title, description, estimated_pomodoros, completed_pomodoros,
	completed, created_at, completed_at FROM tasks`

// GetAll lists tasks oldest first. Completed tasks are skipped unless
// includeCompleted is set.
func (r *Repository) GetAll(ctx context.Context, includeCompleted bool) ([]Task, error) {
	query := selectColumns
	if !includeCompleted {
		query += " WHERE completed = 0"
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Task, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	return scanTask(row)
}

func (r *Repository) Create(ctx context.Context, title, description string, estimated int) (*Task, error) {
	t := NewTask(title, description, estimated)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.CreatedAt = r.now().UTC()

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, estimated_pomodoros, completed_pomodoros, completed, created_at)
		 VALUES (?, ?, ?, 0, 0, ?)`,
		t.Title, t.Description, t.EstimatedPomodoros, store.FormatTime(t.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	t.ID = id
	return t, nil
}

// Update writes the editable fields of t.
func (r *Repository) Update(ctx context.Context, t *Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx,
		"UPDATE tasks SET title = ?, description = ?, estimated_pomodoros = ? WHERE id = ?",
		t.Title, t.Description, t.EstimatedPomodoros, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	return expectRow(result, t.ID)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return expectRow(result, id)
}

// SetCompleted marks a task done or reopens it.
func (r *Repository) SetCompleted(ctx context.Context, id int64, completed bool) error {
	var completedAt any
	flag := 0
	if completed {
		flag = 1
		completedAt = store.FormatTime(r.now())
	}
	result, err := r.db.ExecContext(ctx,
		"UPDATE tasks SET completed = ?, completed_at = ? WHERE id = ?",
		flag, completedAt, id,
	)
	if err != nil {
		return fmt.Errorf("complete task %d: %w", id, err)
	}
	return expectRow(result, id)
}

// IncrementPomodoro credits one finished work phase to the task.
func (r *Repository) IncrementPomodoro(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE tasks SET completed_pomodoros = completed_pomodoros + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("increment task %d: %w", id, err)
	}
	return expectRow(result, id)
}

func expectRow(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %d: %w", id, store.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*Task, error) {
	var t Task
	var completed int
	var createdAt string
	var completedAt sql.NullString
	err := s.Scan(
		&t.ID, &t.Title, &t.Description, &t.EstimatedPomodoros, &t.CompletedPomodoros,
		&completed, &createdAt, &completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	t.Completed = completed == 1

	t.CreatedAt, err = store.ParseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse task created_at: %w", err)
	}
	if completedAt.Valid {
		at, err := store.ParseTime(completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse task completed_at: %w", err)
		}
		t.CompletedAt = &at
	}
	return &t, nil
}
