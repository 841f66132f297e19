package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pomodoro_tui/internal/sessionlog"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sessions",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Number of sessions to show")
	historyCmd.Flags().Int64("task", 0, "Only show sessions for this task id")
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	taskID, _ := cmd.Flags().GetInt64("task")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	var sessions []sessionlog.SessionWithTask
	if taskID > 0 {
		sessions, err = a.sessions.ListByTask(ctx, taskID)
	} else {
		sessions, err = a.sessions.List(ctx, limit)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded.")
		return nil
	}

	fmt.Fprintf(out, "Recent Sessions (%d):\n\n", len(sessions))
	for _, s := range sessions {
		fmt.Fprintf(out, "  %s  %-11s  %4dm%02ds  %-9s  %s\n",
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.Phase.Label(),
			s.ActualSeconds/60, s.ActualSeconds%60,
			s.Status,
			s.TaskTitle)
	}
	return nil
}
