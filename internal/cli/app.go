package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"pomodoro_tui/internal/config"
	"pomodoro_tui/internal/pomodoro"
	"pomodoro_tui/internal/sessionlog"
	"pomodoro_tui/internal/settings"
	"pomodoro_tui/internal/store"
	"pomodoro_tui/internal/task"
	"pomodoro_tui/internal/timer"
)

// app holds the opened stores. The timer parts are only set up by
// startTimer, so one-shot commands never touch running records.
type app struct {
	cfg      *config.Config
	db       *sql.DB
	tasks    *task.Repository
	sessions *sessionlog.Repository
	settings *settings.Store

	coord  *pomodoro.Coordinator
	engine *pomodoro.Engine

	logger  *log.Logger
	logFile *os.File
}

func openApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	settingsStore, err := settings.Open(cfg.SettingsPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	return &app{
		cfg:      cfg,
		db:       db,
		tasks:    task.NewRepository(db),
		sessions: sessionlog.NewRepository(db),
		settings: settingsStore,
	}, nil
}

// openLog routes the standard logger to the configured log file. The file is
// closed by Close after everything that may still log has shut down.
func (a *app) openLog() (*log.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(a.cfg.LogPath), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := tea.LogToFile(a.cfg.LogPath, "pomodoro")
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	a.logFile = f
	a.logger = log.Default()
	return a.logger, nil
}

// startTimer closes records a previous process left running and builds the
// engine.
func (a *app) startTimer(logger *log.Logger) error {
	n, err := a.sessions.AbandonStale(context.Background(), processAlive)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Printf("sessions: marked %d stale record(s) abandoned", n)
	}

	a.coord = pomodoro.NewCoordinator(a.sessions, a.tasks, logger)
	a.engine = pomodoro.New(pomodoro.Config{
		Clock:          timer.System,
		Scheduler:      timer.NewTicker(),
		Settings:       a.settings,
		Hook:           a.coord,
		AutoStartDelay: a.cfg.AutoStartDelay,
	})
	return nil
}

func (a *app) Close() error {
	if a.engine != nil {
		a.engine.Close()
	}
	if a.coord != nil {
		a.coord.Close()
	}
	err := a.db.Close()
	if a.logFile != nil {
		a.logger.Printf("shutdown complete")
		if cerr := a.logFile.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
