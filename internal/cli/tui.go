package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pomodoro_tui/internal"
)

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	logger, err := a.openLog()
	if err != nil {
		return err
	}
	if err := a.startTimer(logger); err != nil {
		return err
	}

	m, err := internal.NewModel(internal.Deps{
		Engine:   a.engine,
		Tasks:    a.tasks,
		Sessions: a.sessions,
		Settings: a.settings,
		Logger:   logger,
		Sync:     a.coord.Flush,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	events := a.engine.Subscribe(64)
	go func() {
		for ev := range events {
			p.Send(internal.MsgEvent{Event: ev})
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
