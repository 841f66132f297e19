package task

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"pomodoro_tui/internal/store"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db)
	repo.now = func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) }
	return repo
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	created, err := repo.Create(ctx, "  Write report ", "quarterly", 0)
	if err != nil {
		t.Fatal(err)
	}
	if created.Title != "Write report" || created.EstimatedPomodoros != 1 {
		t.Fatalf("created = %+v, want trimmed title and estimate 1", created)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != created.Title || got.Description != "quarterly" || !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("GetByID = %+v, want %+v", got, created)
	}
}

func TestCreateRejectsEmptyTitle(t *testing.T) {
	repo := newTestRepository(t)
	if _, err := repo.Create(context.Background(), "   ", "", 2); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func TestMissingTask(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	tests := []struct {
		name string
		call func() error
	}{
		{"get", func() error { _, err := repo.GetByID(ctx, 42); return err }},
		{"delete", func() error { return repo.Delete(ctx, 42) }},
		{"increment", func() error { return repo.IncrementPomodoro(ctx, 42) }},
		{"complete", func() error { return repo.SetCompleted(ctx, 42, true) }},
		{"update", func() error { return repo.Update(ctx, &Task{ID: 42, Title: "x", EstimatedPomodoros: 1}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, store.ErrNotFound) {
				t.Fatalf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestIncrementPomodoro(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	created, err := repo.Create(ctx, "Read", "", 2)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := repo.IncrementPomodoro(ctx, created.ID); err != nil {
			t.Fatal(err)
		}
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.CompletedPomodoros != 3 || got.Remaining() != 0 || !got.IsOverEstimate() {
		t.Fatalf("task = %+v, want 3 completed and over estimate", got)
	}
}

func TestSetCompletedFiltersList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	a, _ := repo.Create(ctx, "a", "", 1)
	b, _ := repo.Create(ctx, "b", "", 1)
	if err := repo.SetCompleted(ctx, a.ID, true); err != nil {
		t.Fatal(err)
	}

	open, err := repo.GetAll(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 1 || open[0].ID != b.ID {
		t.Fatalf("open tasks = %+v, want only %d", open, b.ID)
	}

	all, err := repo.GetAll(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || !all[0].Completed || all[0].CompletedAt == nil {
		t.Fatalf("all tasks = %+v, want a completed with timestamp", all)
	}

	if err := repo.SetCompleted(ctx, a.ID, false); err != nil {
		t.Fatal(err)
	}
	reopened, _ := repo.GetByID(ctx, a.ID)
	if reopened.Completed || reopened.CompletedAt != nil {
		t.Fatalf("reopened = %+v, want open without timestamp", reopened)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	created, _ := repo.Create(ctx, "draft", "", 1)
	created.Title = "final"
	created.EstimatedPomodoros = 5
	if err := repo.Update(ctx, created); err != nil {
		t.Fatal(err)
	}
	got, _ := repo.GetByID(ctx, created.ID)
	if got.Title != "final" || got.EstimatedPomodoros != 5 {
		t.Fatalf("updated = %+v", got)
	}

	created.EstimatedPomodoros = 0
	if err := repo.Update(ctx, created); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetByID(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after delete", err)
	}
}
