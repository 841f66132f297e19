package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Settings) {}},
		{name: "zero work", mutate: func(s *Settings) { s.WorkDuration = 0 }, wantErr: true},
		{name: "negative long break", mutate: func(s *Settings) { s.LongBreakDuration = -1 }, wantErr: true},
		{name: "interval one", mutate: func(s *Settings) { s.LongBreakInterval = 1 }, wantErr: true},
		{name: "interval two", mutate: func(s *Settings) { s.LongBreakInterval = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(&s)

			err := s.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalid) {
				t.Fatalf("Validate() = %v, want ErrInvalid", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != Defaults() {
		t.Fatalf("Load() = %+v, want defaults", got)
	}
}

func TestLoadClampsAndKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "work_duration: 3000\nlong_break_interval: 1\nshort_break_duration: -10\nauto_start_breaks: true\nsound_enabled: false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.WorkDuration != 3000 {
		t.Errorf("WorkDuration = %d, want 3000", got.WorkDuration)
	}
	if got.ShortBreakDuration != DefaultShortBreakDuration {
		t.Errorf("ShortBreakDuration = %d, want default", got.ShortBreakDuration)
	}
	if got.LongBreakDuration != DefaultLongBreakDuration {
		t.Errorf("LongBreakDuration = %d, want default", got.LongBreakDuration)
	}
	if got.LongBreakInterval != MinLongBreakInterval {
		t.Errorf("LongBreakInterval = %d, want clamp to %d", got.LongBreakInterval, MinLongBreakInterval)
	}
	if !got.AutoStartBreaks || got.SoundEnabled {
		t.Errorf("flags not applied: %+v", got)
	}
}

func TestStoreUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	next := store.Read()
	next.LongBreakInterval = 3
	next.AutoStartPomodoros = true
	if err := store.Update(next); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Read() != next {
		t.Fatalf("reopened = %+v, want %+v", reopened.Read(), next)
	}
}

func TestStoreUpdateRejectsInvalid(t *testing.T) {
	store := NewMemoryStore(Defaults())

	bad := store.Read()
	bad.LongBreakInterval = 0
	if err := store.Update(bad); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Update() = %v, want ErrInvalid", err)
	}
	if store.Read().LongBreakInterval != DefaultLongBreakInterval {
		t.Fatal("rejected update changed the current settings")
	}
}
