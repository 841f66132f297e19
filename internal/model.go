package internal

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"pomodoro_tui/internal/pomodoro"
	"pomodoro_tui/internal/sessionlog"
	"pomodoro_tui/internal/settings"
	"pomodoro_tui/internal/task"

	tea "github.com/charmbracelet/bubbletea"
)

const historyLimit = 50

// MsgEvent carries an engine event into the program.
type MsgEvent struct {
	Event pomodoro.Event
}

type msgTasksLoaded struct {
	tasks []task.Task
	err   error
}

type msgHistoryLoaded struct {
	logs  []sessionlog.SessionWithTask
	today sessionlog.Summary
	err   error
}

// Deps are the collaborators the Model drives.
type Deps struct {
	Engine   *pomodoro.Engine
	Tasks    *task.Repository
	Sessions *sessionlog.Repository
	Settings *settings.Store
	Logger   *log.Logger

	// Sync waits for pending session and task writes. Optional.
	Sync func()
	// Bell receives the completion cue. Defaults to stdout.
	Bell io.Writer
}

type Model struct {
	engine   *pomodoro.Engine
	tasks    *task.Repository
	sessions *sessionlog.Repository
	settings *settings.Store
	logger   *log.Logger
	sync     func()
	bell     io.Writer

	Snapshot      pomodoro.Snapshot
	Tasks         []task.Task
	SelectedIndex int
	Err           error

	ShowAddForm     bool
	// EditingTaskID is the task the form saves to; zero adds a new one.
	EditingTaskID   int64
	NewTaskTitle    string
	NewTaskEstimate string
	InputFocus      int

	ShowLogView   bool
	LogViewScroll int
	AllLogs       []sessionlog.SessionWithTask
	Today         sessionlog.Summary
}

func NewModel(deps Deps) (*Model, error) {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard, "", 0)
	}
	if deps.Bell == nil {
		deps.Bell = os.Stdout
	}

	m := &Model{
		engine:   deps.Engine,
		tasks:    deps.Tasks,
		sessions: deps.Sessions,
		settings: deps.Settings,
		logger:   deps.Logger,
		sync:     deps.Sync,
		bell:     deps.Bell,
		Snapshot: deps.Engine.Snapshot(),
	}

	tasks, err := m.tasks.GetAll(context.Background(), true)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	m.Tasks = tasks
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgEvent:
		m.Snapshot = msg.Event.Snapshot
		if msg.Event.Type == pomodoro.EventCompleted {
			return m, m.onCompleted(msg.Event.Finished)
		}
		return m, nil
	case msgTasksLoaded:
		if msg.err != nil {
			m.Err = msg.err
			return m, nil
		}
		m.setTasks(msg.tasks)
		return m, nil
	case msgHistoryLoaded:
		if msg.err != nil {
			m.Err = msg.err
			return m, nil
		}
		m.AllLogs = msg.logs
		m.Today = msg.today
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	if m.ShowLogView {
		return m.allLogsView()
	}

	if m.ShowAddForm {
		return m.addFormView()
	}

	return m.mainView()
}

func (m *Model) SelectedTask() *task.Task {
	if m.SelectedIndex >= 0 && m.SelectedIndex < len(m.Tasks) {
		return &m.Tasks[m.SelectedIndex]
	}
	return nil
}

// LinkedTask returns the task that the next work phase will be recorded
// against.
func (m *Model) LinkedTask() *task.Task {
	if m.Snapshot.TaskID == nil {
		return nil
	}
	for i := range m.Tasks {
		if m.Tasks[i].ID == *m.Snapshot.TaskID {
			return &m.Tasks[i]
		}
	}
	return nil
}

func (m *Model) AddTask(title string, estimated int) error {
	t, err := m.tasks.Create(context.Background(), title, "", estimated)
	if err != nil {
		return err
	}
	m.Tasks = append(m.Tasks, *t)
	m.SelectedIndex = len(m.Tasks) - 1
	return nil
}

// EditTask renames and re-estimates a task. The counters are left as they are.
func (m *Model) EditTask(id int64, title string, estimated int) error {
	for i := range m.Tasks {
		if m.Tasks[i].ID != id {
			continue
		}
		updated := m.Tasks[i]
		updated.Title = strings.TrimSpace(title)
		updated.EstimatedPomodoros = estimated
		if err := m.tasks.Update(context.Background(), &updated); err != nil {
			return err
		}
		m.Tasks[i] = updated
		return nil
	}
	return fmt.Errorf("task %d is not in the list", id)
}

func (m *Model) DeleteTask(id int64) error {
	if err := m.tasks.Delete(context.Background(), id); err != nil {
		return err
	}
	m.engine.ForgetTask(id)
	for i, t := range m.Tasks {
		if t.ID == id {
			m.Tasks = append(m.Tasks[:i], m.Tasks[i+1:]...)
			break
		}
	}
	if m.SelectedIndex >= len(m.Tasks) {
		m.SelectedIndex = len(m.Tasks) - 1
	}
	if m.SelectedIndex < 0 {
		m.SelectedIndex = 0
	}
	return nil
}

func (m *Model) ToggleTask(t *task.Task) error {
	completed := !t.Completed
	if err := m.tasks.SetCompleted(context.Background(), t.ID, completed); err != nil {
		return err
	}
	if completed {
		m.engine.ForgetTask(t.ID)
	}
	updated, err := m.tasks.GetByID(context.Background(), t.ID)
	if err != nil {
		return err
	}
	*t = *updated
	return nil
}

func (m *Model) setTasks(tasks []task.Task) {
	m.Tasks = tasks
	if m.SelectedIndex >= len(m.Tasks) {
		m.SelectedIndex = max(len(m.Tasks)-1, 0)
	}
}

// onCompleted refreshes task counters once the pending writes land and rings
// the bell when enabled.
func (m *Model) onCompleted(finished pomodoro.Phase) tea.Cmd {
	cmds := []tea.Cmd{m.loadTasks()}
	if m.settings.Read().SoundEnabled {
		cmds = append(cmds, m.ring())
	}
	m.logger.Printf("phase completed: %s", finished)
	return tea.Batch(cmds...)
}

func (m *Model) loadTasks() tea.Cmd {
	return func() tea.Msg {
		if m.sync != nil {
			m.sync()
		}
		tasks, err := m.tasks.GetAll(context.Background(), true)
		return msgTasksLoaded{tasks: tasks, err: err}
	}
}

func (m *Model) loadHistory() tea.Cmd {
	return func() tea.Msg {
		if m.sync != nil {
			m.sync()
		}
		ctx := context.Background()
		logs, err := m.sessions.List(ctx, historyLimit)
		if err != nil {
			return msgHistoryLoaded{err: err}
		}
		y, mo, d := time.Now().Date()
		today, err := m.sessions.SummarizeSince(ctx, time.Date(y, mo, d, 0, 0, 0, 0, time.Local))
		return msgHistoryLoaded{logs: logs, today: today, err: err}
	}
}

func (m *Model) ring() tea.Cmd {
	return func() tea.Msg {
		fmt.Fprint(m.bell, "\a")
		return nil
	}
}

// toggleTimer starts, pauses or resumes depending on the current state.
func (m *Model) toggleTimer() error {
	switch m.engine.Snapshot().State {
	case pomodoro.StateRunning:
		return m.engine.Pause()
	case pomodoro.StatePaused:
		return m.engine.Resume()
	default:
		return m.engine.Start()
	}
}

func nextPhase(p pomodoro.Phase) pomodoro.Phase {
	switch p {
	case pomodoro.PhaseWork:
		return pomodoro.PhaseShortBreak
	case pomodoro.PhaseShortBreak:
		return pomodoro.PhaseLongBreak
	default:
		return pomodoro.PhaseWork
	}
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ShowLogView {
		return m.handleLogViewInput(msg)
	}

	if m.ShowAddForm {
		return m.handleFormInput(msg)
	}

	m.Err = nil
	var cmd tea.Cmd
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case " ":
		m.Err = m.toggleTimer()
	case "r":
		m.Err = m.engine.Reset()
	case "p":
		m.Err = m.engine.SelectPhase(nextPhase(m.engine.Snapshot().Phase))
	case "c":
		m.engine.ResetCycle()
	case "up", "k":
		if m.SelectedIndex > 0 {
			m.SelectedIndex--
		}
	case "down", "j":
		if m.SelectedIndex < len(m.Tasks)-1 {
			m.SelectedIndex++
		}
	case "enter":
		t := m.SelectedTask()
		if t != nil {
			if t.Completed {
				m.Err = fmt.Errorf("task %q is already completed", t.Title)
			} else {
				m.engine.SetTask(t.ID)
			}
		}
	case "u":
		m.engine.ClearTask()
	case "n":
		m.ShowAddForm = true
		m.EditingTaskID = 0
		m.NewTaskTitle = ""
		m.NewTaskEstimate = ""
		m.InputFocus = 0
	case "e":
		t := m.SelectedTask()
		if t != nil {
			m.ShowAddForm = true
			m.EditingTaskID = t.ID
			m.NewTaskTitle = t.Title
			m.NewTaskEstimate = strconv.Itoa(t.EstimatedPomodoros)
			m.InputFocus = 0
		}
	case "d":
		t := m.SelectedTask()
		if t != nil {
			m.Err = m.DeleteTask(t.ID)
		}
	case "x":
		t := m.SelectedTask()
		if t != nil {
			m.Err = m.ToggleTask(t)
		}
	case "l":
		m.ShowLogView = true
		m.LogViewScroll = 0
		m.AllLogs = nil
		cmd = m.loadHistory()
	}
	m.Snapshot = m.engine.Snapshot()
	return m, cmd
}

func (m *Model) handleLogViewInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc", "l":
		m.ShowLogView = false
		m.AllLogs = nil
	case "up", "k":
		if m.LogViewScroll > 0 {
			m.LogViewScroll--
		}
	case "down", "j":
		maxScroll := len(m.AllLogs) - 1
		if maxScroll < 0 {
			maxScroll = 0
		}
		if m.LogViewScroll < maxScroll {
			m.LogViewScroll++
		}
	}
	return m, nil
}

func (m *Model) handleFormInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.ShowAddForm = false
		m.EditingTaskID = 0
		m.Err = nil
	case "enter":
		if m.InputFocus == 0 {
			m.InputFocus = 1
			return m, nil
		}
		estimate := 1
		if v, err := strconv.Atoi(m.NewTaskEstimate); err == nil && v > 0 {
			estimate = v
		}
		var err error
		if m.EditingTaskID != 0 {
			err = m.EditTask(m.EditingTaskID, m.NewTaskTitle, estimate)
		} else {
			err = m.AddTask(m.NewTaskTitle, estimate)
		}
		if err != nil {
			m.Err = err
			m.InputFocus = 0
			return m, nil
		}
		m.Err = nil
		m.ShowAddForm = false
		m.EditingTaskID = 0
	case "backspace":
		if m.InputFocus == 0 {
			if len(m.NewTaskTitle) > 0 {
				runes := []rune(m.NewTaskTitle)
				m.NewTaskTitle = string(runes[:len(runes)-1])
			}
		} else {
			if len(m.NewTaskEstimate) > 0 {
				m.NewTaskEstimate = m.NewTaskEstimate[:len(m.NewTaskEstimate)-1]
			}
		}
	case "tab", "shift+tab":
		m.InputFocus = 1 - m.InputFocus
	default:
		runes := []rune(msg.String())
		if msg.Type == tea.KeySpace {
			runes = []rune{' '}
		}
		if len(runes) == 1 {
			if m.InputFocus == 0 {
				m.NewTaskTitle += string(runes[0])
			} else if runes[0] >= '0' && runes[0] <= '9' {
				m.NewTaskEstimate += string(runes[0])
			}
		}
	}
	return m, nil
}
