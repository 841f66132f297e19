package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultConfig()
	if *cfg != *want {
		t.Fatalf("Load(\"\") = %+v, want %+v", cfg, want)
	}
}

func TestLoadEnvironment(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("POMODORO_DB_PATH", dbPath)
	t.Setenv("POMODORO_ADDR", ":9999")
	t.Setenv("POMODORO_AUTO_START_DELAY", "5s")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != dbPath || cfg.Addr != ":9999" || cfg.AutoStartDelay != 5*time.Second {
		t.Fatalf("cfg = %+v, want env overrides", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "addr: 0.0.0.0:7000\nauto_start_delay: 0s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("POMODORO_LOG_PATH", "/tmp/override.log")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != "0.0.0.0:7000" {
		t.Fatalf("addr = %q, want file value", cfg.Addr)
	}
	if cfg.LogPath != "/tmp/override.log" {
		t.Fatalf("log path = %q, want env to win over defaults", cfg.LogPath)
	}
	if cfg.AutoStartDelay != 2*time.Second {
		t.Fatalf("auto start delay = %v, want default for non-positive value", cfg.AutoStartDelay)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for explicit missing config file")
	}
}
