package internal

import (
	"fmt"
	"strings"
	"time"

	"pomodoro_tui/internal/pomodoro"
	"pomodoro_tui/internal/sessionlog"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	taskItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	taskItemSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	timerDisplayStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("69")).
				Bold(true)

	timerRunningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	timerBreakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 0)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	inputInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	logHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	logTagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	logTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)
)

func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func formatSeconds(s int) string {
	return formatDuration(time.Duration(s) * time.Second)
}

func (m *Model) mainView() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(80).Render("Pomodoro TUI"))
	sb.WriteString("\n\n")

	boxes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.timerView(),
		"  ",
		m.taskListView(),
	)
	sb.WriteString(boxes)
	sb.WriteString("\n\n")
	if m.Err != nil {
		sb.WriteString(errorStyle.Render(m.Err.Error()))
		sb.WriteString("\n")
	}
	sb.WriteString(helpStyle.Render("Start/Pause: Space | Reset: r | Phase: p | Cycle: c | History: l | Quit: q"))
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Tasks: Up/Down | Link: Enter | Unlink: u | New: n | Edit: e | Done: x | Delete: d"))

	return sb.String()
}

func (m *Model) timerView() string {
	s := m.Snapshot

	style := timerDisplayStyle
	switch {
	case s.State == pomodoro.StateRunning && s.Phase.IsBreak():
		style = timerBreakStyle
	case s.State == pomodoro.StateRunning:
		style = timerRunningStyle
	}

	status := stateLabel(s.State)
	statusStyle := inactiveStyle
	if s.State == pomodoro.StateRunning {
		statusStyle = runningStyle
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s\n\n", logHeaderStyle.Render(s.Phase.Label())))
	sb.WriteString(style.Render(formatSeconds(s.RemainingSeconds)))
	sb.WriteString(fmt.Sprintf("\n\n%s\n", statusStyle.Render(status)))
	sb.WriteString(fmt.Sprintf("Pomodoros: %d\n", s.CompletedWork))

	if s.State == pomodoro.StateCompleted && s.NextPhase != "" {
		next := fmt.Sprintf("Next: %s (%s)", s.NextPhase.Label(), formatSeconds(s.NextSeconds))
		if s.AutoStartPending {
			next += " starting..."
		}
		sb.WriteString(next + "\n")
	}

	if t := m.LinkedTask(); t != nil {
		sb.WriteString(fmt.Sprintf("\nTask: %s\n", logTagStyle.Render(t.Title)))
	}
	if s.RunTaskID != nil && (s.TaskID == nil || *s.RunTaskID != *s.TaskID) {
		sb.WriteString(inactiveStyle.Render("(current run keeps its original task)") + "\n")
	}

	return boxStyle.Width(35).Height(15).Render(sb.String())
}

func stateLabel(s pomodoro.State) string {
	switch s {
	case pomodoro.StateRunning:
		return "Running"
	case pomodoro.StatePaused:
		return "Paused"
	case pomodoro.StateCompleted:
		return "Completed"
	default:
		return "Ready"
	}
}

func (m *Model) taskListView() string {
	var sb strings.Builder

	sb.WriteString("Tasks\n\n")

	if len(m.Tasks) == 0 {
		sb.WriteString(inactiveStyle.Render("No tasks yet. Press 'n' to add one."))
	}

	for i, t := range m.Tasks {
		marker := "  "
		if m.Snapshot.TaskID != nil && *m.Snapshot.TaskID == t.ID {
			marker = "● "
		}
		if t.Completed {
			marker = "✓ "
		}

		line := fmt.Sprintf("%s%s %d/%d", marker, t.Title, t.CompletedPomodoros, t.EstimatedPomodoros)

		if i == m.SelectedIndex {
			sb.WriteString(taskItemSelectedStyle.Render(line))
		} else if t.Completed {
			sb.WriteString(taskItemStyle.Render(inactiveStyle.Render(line)))
		} else {
			sb.WriteString(taskItemStyle.Render(line))
		}
		sb.WriteString("\n")
	}

	return boxStyle.Width(40).Height(15).Render(sb.String())
}

func (m *Model) addFormView() string {
	heading := "Add New Task"
	if m.EditingTaskID != 0 {
		heading = "Edit Task"
	}

	// Add a visible focus marker so it's obvious which field is active.
	titleMarker := "  "
	if m.InputFocus == 0 {
		titleMarker = "→ "
	}
	titleLabel := fmt.Sprintf("%sTitle: ", titleMarker)
	if m.InputFocus == 0 {
		titleLabel = inputStyle.Render(titleLabel)
	} else {
		titleLabel = inputInactiveStyle.Render(titleLabel)
	}

	estimateMarker := "  "
	if m.InputFocus == 1 {
		estimateMarker = "→ "
	}
	estimateLabel := fmt.Sprintf("%sPomodoros: ", estimateMarker)
	if m.InputFocus == 1 {
		estimateLabel = inputStyle.Render(estimateLabel)
	} else {
		estimateLabel = inputInactiveStyle.Render(estimateLabel)
	}

	titleValue := m.NewTaskTitle
	if m.InputFocus == 0 {
		titleValue = inputStyle.Render(titleValue + "█")
	}

	estimateValue := m.NewTaskEstimate
	if m.InputFocus == 1 {
		estimateValue = inputStyle.Render(estimateValue + "█")
	}

	focusName := "Title"
	if m.InputFocus == 1 {
		focusName = "Pomodoros"
	}
	helpText := fmt.Sprintf("Tab: Switch (Focused: %s) | Enter: Save | Esc: Cancel", focusName)

	form := fmt.Sprintf("%s\n\n%s%s\n\n%s%s\n\n%s",
		titleStyle.Render(heading),
		titleLabel, titleValue,
		estimateLabel, estimateValue,
		helpStyle.Render(helpText),
	)
	if m.Err != nil {
		form += "\n" + errorStyle.Render(m.Err.Error())
	}

	return lipgloss.Place(
		80, 24,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Width(50).Render(form),
	)
}

func (m *Model) allLogsView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Width(80).Render("History"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Today: %d pomodoros, %s focused\n\n",
		m.Today.CompletedWork, formatSeconds(m.Today.FocusSeconds)))

	if m.Err != nil {
		sb.WriteString(errorStyle.Render(m.Err.Error()) + "\n")
	}
	if len(m.AllLogs) == 0 {
		sb.WriteString(inactiveStyle.Render("No sessions recorded yet."))
	}

	const pageSize = 15
	start := min(m.LogViewScroll, max(len(m.AllLogs)-1, 0))
	end := min(start+pageSize, len(m.AllLogs))
	for _, l := range m.AllLogs[start:end] {
		sb.WriteString(m.formatLogEntry(l))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Scroll: Up/Down | Back: Esc/l"))
	return boxStyle.Width(78).Render(sb.String())
}

func (m *Model) formatLogEntry(l sessionlog.SessionWithTask) string {
	timeStr := logTimeStyle.Render(l.StartedAt.Local().Format("Jan 02 15:04"))
	dur := formatSeconds(l.ActualSeconds)
	status := string(l.Status)
	if l.Status == sessionlog.StatusCompleted {
		status = runningStyle.Render(status)
	} else {
		status = inactiveStyle.Render(status)
	}
	tag := ""
	if l.TaskTitle != "" {
		tag = " " + logTagStyle.Render("["+l.TaskTitle+"]")
	}
	return fmt.Sprintf("  %s  %-11s %s %s%s", timeStr, l.Phase.Label(), dur, status, tag)
}
