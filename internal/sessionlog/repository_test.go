package sessionlog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"pomodoro_tui/internal/pomodoro"
	"pomodoro_tui/internal/settings"
	"pomodoro_tui/internal/store"
	"pomodoro_tui/internal/task"
	"pomodoro_tui/internal/timer/timertest"
)

type fixture struct {
	sessions *Repository
	tasks    *task.Repository
	clock    *timertest.Clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clock := timertest.NewClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	sessions := NewRepository(db)
	sessions.now = clock.Now
	return &fixture{sessions: sessions, tasks: task.NewRepository(db), clock: clock}
}

func TestStartComplete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tk, err := f.tasks.Create(ctx, "Write", "", 2)
	if err != nil {
		t.Fatal(err)
	}
	id, err := f.sessions.Start(ctx, &tk.ID, pomodoro.PhaseWork, 1500)
	if err != nil {
		t.Fatal(err)
	}

	f.clock.Advance(25 * time.Minute)
	if err := f.sessions.Complete(ctx, id, 1500); err != nil {
		t.Fatal(err)
	}

	got, err := f.sessions.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusCompleted || got.ActualSeconds != 1500 || got.TaskTitle != "Write" {
		t.Fatalf("session = %+v, want completed 1500s for Write", got)
	}
	if got.EndedAt == nil || got.EndedAt.Sub(got.StartedAt) != 25*time.Minute {
		t.Fatalf("ended_at = %v, want 25m after %v", got.EndedAt, got.StartedAt)
	}
}

func TestFinishOnlyActsOnRunningRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	id, err := f.sessions.Start(ctx, nil, pomodoro.PhaseShortBreak, 300)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.sessions.Abandon(ctx, id, 120); err != nil {
		t.Fatal(err)
	}

	if err := f.sessions.Complete(ctx, id, 300); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Complete after Abandon: err = %v, want ErrNotFound", err)
	}
	if err := f.sessions.Abandon(ctx, "missing", 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Abandon(missing): err = %v, want ErrNotFound", err)
	}

	got, _ := f.sessions.Get(ctx, id)
	if got.Status != StatusAbandoned || got.ActualSeconds != 120 || got.TaskID != nil {
		t.Fatalf("session = %+v, want abandoned 120s without task", got)
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := f.sessions.Start(ctx, nil, pomodoro.PhaseWork, 60)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
		f.clock.Advance(1500 * time.Millisecond)
	}

	got, err := f.sessions.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != ids[2] || got[1].ID != ids[1] {
		t.Fatalf("List(2) = %+v, want newest two", got)
	}
}

func TestListByTaskAndDeletedTask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, _ := f.tasks.Create(ctx, "a", "", 1)
	b, _ := f.tasks.Create(ctx, "b", "", 1)
	if _, err := f.sessions.Start(ctx, &a.ID, pomodoro.PhaseWork, 60); err != nil {
		t.Fatal(err)
	}
	if _, err := f.sessions.Start(ctx, &b.ID, pomodoro.PhaseWork, 60); err != nil {
		t.Fatal(err)
	}

	got, err := f.sessions.ListByTask(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].TaskTitle != "a" {
		t.Fatalf("ListByTask = %+v, want one record for a", got)
	}

	if err := f.tasks.Delete(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	all, err := f.sessions.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("List = %d records, want history kept after task delete", len(all))
	}
}

func TestAbandonStale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	done, _ := f.sessions.Start(ctx, nil, pomodoro.PhaseWork, 60)
	if err := f.sessions.Complete(ctx, done, 60); err != nil {
		t.Fatal(err)
	}
	stale, _ := f.sessions.Start(ctx, nil, pomodoro.PhaseWork, 60)

	n, err := f.sessions.AbandonStale(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("AbandonStale() = %d, want 1", n)
	}
	got, _ := f.sessions.Get(ctx, stale)
	if got.Status != StatusAbandoned {
		t.Fatalf("stale status = %s, want abandoned", got.Status)
	}
}

func TestAbandonStaleSparesLiveOwners(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	other := NewRepository(f.sessions.db)
	other.now = f.clock.Now
	other.pid = f.sessions.pid + 1
	live, _ := other.Start(ctx, nil, pomodoro.PhaseWork, 60)

	gone := NewRepository(f.sessions.db)
	gone.now = f.clock.Now
	gone.pid = f.sessions.pid + 2
	dead, _ := gone.Start(ctx, nil, pomodoro.PhaseWork, 60)

	own, _ := f.sessions.Start(ctx, nil, pomodoro.PhaseWork, 60)

	alive := func(pid int) bool { return pid == other.pid }
	n, err := f.sessions.AbandonStale(ctx, alive)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("AbandonStale() = %d, want 2", n)
	}

	want := map[string]Status{live: StatusRunning, dead: StatusAbandoned, own: StatusAbandoned}
	for id, status := range want {
		got, err := f.sessions.Get(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != status {
			t.Errorf("session %s status = %s, want %s", id, got.Status, status)
		}
	}

	// The live owner can still finish its own run.
	if err := other.Complete(ctx, live, 60); err != nil {
		t.Fatalf("Complete after foreign recovery: %v", err)
	}
}

func TestSummarizeSince(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	since := f.clock.Now()

	for _, phase := range []pomodoro.Phase{pomodoro.PhaseWork, pomodoro.PhaseShortBreak, pomodoro.PhaseWork} {
		id, _ := f.sessions.Start(ctx, nil, phase, 60)
		if err := f.sessions.Complete(ctx, id, 60); err != nil {
			t.Fatal(err)
		}
	}
	abandoned, _ := f.sessions.Start(ctx, nil, pomodoro.PhaseWork, 60)
	_ = f.sessions.Abandon(ctx, abandoned, 30)

	got, err := f.sessions.SummarizeSince(ctx, since)
	if err != nil {
		t.Fatal(err)
	}
	if got != (Summary{CompletedWork: 2, FocusSeconds: 120}) {
		t.Fatalf("SummarizeSince = %+v, want 2 work phases and 120s", got)
	}
}

// A completed work phase linked to a task lands in both tables.
func TestEngineRecordsThroughCoordinator(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tk, _ := f.tasks.Create(ctx, "Focus", "", 4)
	sched := timertest.NewScheduler(f.clock)
	coord := pomodoro.NewCoordinator(f.sessions, f.tasks, nil)
	engine := pomodoro.New(pomodoro.Config{
		Clock:     f.clock,
		Scheduler: sched,
		Settings:  settings.NewMemoryStore(settings.Defaults()),
		Hook:      coord,
	})
	defer coord.Close()
	defer engine.Close()

	engine.SetTask(tk.ID)
	if err := engine.Start(); err != nil {
		t.Fatal(err)
	}
	sched.Advance(time.Duration(settings.DefaultWorkDuration) * time.Second)
	coord.Flush()

	got, _ := f.tasks.GetByID(ctx, tk.ID)
	if got.CompletedPomodoros != 1 {
		t.Fatalf("completed pomodoros = %d, want 1", got.CompletedPomodoros)
	}
	records, _ := f.sessions.ListByTask(ctx, tk.ID)
	if len(records) != 1 || records[0].Status != StatusCompleted {
		t.Fatalf("records = %+v, want one completed", records)
	}
}
