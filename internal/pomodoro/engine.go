package pomodoro

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"pomodoro_tui/internal/settings"
	"pomodoro_tui/internal/timer"
)

const (
	// AutoStartDelay is the gap between a completed phase and the next one
	// when auto-start is enabled.
	AutoStartDelay = 2 * time.Second

	tickInterval = time.Second
)

var (
	ErrInvalidTransition = errors.New("invalid timer transition")
	ErrInvalidPhase      = errors.New("invalid phase")
)

// SettingsReader supplies a settings snapshot per decision.
type SettingsReader interface {
	Read() settings.Settings
}

// Run identifies one armed phase.
type Run struct {
	Token          uint64
	Phase          Phase
	PlannedSeconds int
	TaskID         *int64
}

// PhaseHook is told about phase lifecycle changes. Calls are made with the
// engine lock held, so implementations must return promptly.
type PhaseHook interface {
	PhaseStarted(run Run)
	PhaseCompleted(run Run, elapsedSeconds int)
	PhaseAbandoned(run Run, elapsedSeconds int)
}

type noopHook struct{}

func (noopHook) PhaseStarted(Run)        {}
func (noopHook) PhaseCompleted(Run, int) {}
func (noopHook) PhaseAbandoned(Run, int) {}

// Config contains the collaborators of an Engine.
type Config struct {
	Clock     timer.Clock
	Scheduler timer.Scheduler
	Settings  SettingsReader
	Hook      PhaseHook

	// AutoStartDelay overrides the package default when positive.
	AutoStartDelay time.Duration
}

// Engine is the pomodoro timer state machine. Every exported method is safe
// for concurrent use; all state changes happen under one lock.
type Engine struct {
	mu        sync.Mutex
	clock     timer.Clock
	scheduler timer.Scheduler
	settings  SettingsReader
	hook      PhaseHook
	autoDelay time.Duration

	state     State
	phase     Phase
	countdown *timer.Countdown
	cycle     CycleCounter
	next      *Decision
	taskID    *int64
	run       *Run

	token    uint64 // identifies the current run
	tickGen  uint64 // identifies the current ticker
	stopTick func()
	stopAuto func()

	events []chan Event
	closed bool
}

// New creates an idle Engine positioned on a work phase.
func New(cfg Config) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = timer.System
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = timer.NewTicker()
	}
	if cfg.Settings == nil {
		cfg.Settings = settings.NewMemoryStore(settings.Defaults())
	}
	if cfg.Hook == nil {
		cfg.Hook = noopHook{}
	}
	if cfg.AutoStartDelay <= 0 {
		cfg.AutoStartDelay = AutoStartDelay
	}

	e := &Engine{
		clock:     cfg.Clock,
		scheduler: cfg.Scheduler,
		settings:  cfg.Settings,
		hook:      cfg.Hook,
		autoDelay: cfg.AutoStartDelay,
		state:     StateIdle,
		phase:     PhaseWork,
		countdown: timer.NewCountdown(cfg.Clock),
	}
	e.countdown.Reset(DurationFor(e.phase, e.settings.Read()))
	return e
}

// Subscribe registers a new observer channel. Events are dropped for
// subscribers whose buffer is full.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		close(ch)
		return ch
	}
	e.events = append(e.events, ch)
	return ch
}

// Start arms a phase. From idle it runs the current phase; from completed it
// first advances to the phase the cycle policy decided.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateIdle:
		e.startLocked(DurationFor(e.phase, e.settings.Read()))
	case StateCompleted:
		e.startLocked(e.applyNextLocked())
	default:
		return e.rejectLocked("start")
	}
	return nil
}

// Pause freezes a running phase.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return e.rejectLocked("pause")
	}

	// Sample the clock so the frozen value is current, not a second stale.
	if _, expired := e.countdown.Tick(); expired {
		e.completeLocked()
		return nil
	}

	e.stopTickLocked()
	e.countdown.Pause()
	e.state = StatePaused
	e.emitLocked(Event{Type: EventStateChange})
	return nil
}

// Resume continues a paused phase from where it stopped.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StatePaused {
		return e.rejectLocked("resume")
	}

	e.countdown.ResumeFrom(e.countdown.Remaining(), e.run.PlannedSeconds)
	e.state = StateRunning
	e.startTickLocked()
	e.emitLocked(Event{Type: EventStateChange})
	return nil
}

// Reset returns to idle. An unfinished phase is abandoned; after a completed
// phase the decided next phase becomes current. Reset while idle does nothing.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateIdle:
		return nil
	case StateRunning, StatePaused:
		e.stopTickLocked()
		run := *e.run
		e.run = nil
		e.hook.PhaseAbandoned(run, e.countdown.Elapsed())
		e.countdown.Reset(DurationFor(e.phase, e.settings.Read()))
	case StateCompleted:
		e.cancelAutoLocked()
		e.countdown.Reset(e.applyNextLocked())
	}

	e.token++
	e.state = StateIdle
	e.emitLocked(Event{Type: EventStateChange})
	return nil
}

// SelectPhase makes p the current phase. Only allowed when nothing is armed.
func (e *Engine) SelectPhase(p Phase) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPhase, p)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle && e.state != StateCompleted {
		return e.rejectLocked("select phase")
	}

	e.cancelAutoLocked()
	e.next = nil
	e.phase = p
	e.token++
	e.state = StateIdle
	e.countdown.Reset(DurationFor(p, e.settings.Read()))
	e.emitLocked(Event{Type: EventStateChange})
	return nil
}

// SetTask links a task to future work phases. A phase already armed keeps
// the task it started with.
func (e *Engine) SetTask(taskID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := taskID
	e.taskID = &id
	e.emitLocked(Event{Type: EventTaskChange})
}

// ClearTask unlinks the selected task.
func (e *Engine) ClearTask() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.taskID = nil
	e.emitLocked(Event{Type: EventTaskChange})
}

// ForgetTask clears the selection if it points at taskID.
func (e *Engine) ForgetTask(taskID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.taskID != nil && *e.taskID == taskID {
		e.taskID = nil
		e.emitLocked(Event{Type: EventTaskChange})
	}
}

// ResetCycle zeroes the completed work counter.
func (e *Engine) ResetCycle() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cycle.Reset()
	e.emitLocked(Event{Type: EventCycleReset})
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Close stops all scheduled work and closes subscriber channels. An armed
// phase is abandoned.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.stopTickLocked()
	e.cancelAutoLocked()
	if e.run != nil {
		e.hook.PhaseAbandoned(*e.run, e.countdown.Elapsed())
		e.run = nil
	}
	e.token++
	events := e.events
	e.events = nil
	e.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (e *Engine) startLocked(plannedSeconds int) {
	e.cancelAutoLocked()
	e.token++

	var taskID *int64
	if e.phase == PhaseWork && e.taskID != nil {
		id := *e.taskID
		taskID = &id
	}
	e.run = &Run{
		Token:          e.token,
		Phase:          e.phase,
		PlannedSeconds: plannedSeconds,
		TaskID:         taskID,
	}

	e.hook.PhaseStarted(*e.run)
	e.countdown.Arm(plannedSeconds)
	e.state = StateRunning
	e.startTickLocked()
	e.emitLocked(Event{Type: EventStateChange})
}

func (e *Engine) completeLocked() {
	e.stopTickLocked()

	run := *e.run
	e.run = nil
	e.state = StateCompleted

	snap := e.settings.Read()
	if run.Phase == PhaseWork {
		e.cycle.Record()
	}
	decision := Next(run.Phase, e.cycle.CompletedWork(), snap)
	e.next = &decision

	e.hook.PhaseCompleted(run, max(run.PlannedSeconds, 0))

	if autoStarts(run.Phase, snap) {
		token := e.token
		e.stopAuto = e.scheduler.After(e.autoDelay, func() {
			e.autoStart(token)
		})
	}
	e.emitLocked(Event{Type: EventCompleted, Finished: run.Phase})
}

func (e *Engine) autoStart(token uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if token != e.token || e.state != StateCompleted {
		return
	}
	e.stopAuto = nil
	e.startLocked(e.applyNextLocked())
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.tickGen || e.state != StateRunning {
		return
	}

	if _, expired := e.countdown.Tick(); expired {
		e.completeLocked()
		return
	}
	e.emitLocked(Event{Type: EventTick})
}

// applyNextLocked moves onto the decided next phase and returns its length.
func (e *Engine) applyNextLocked() int {
	if e.next == nil {
		return DurationFor(e.phase, e.settings.Read())
	}
	decision := *e.next
	e.next = nil
	e.phase = decision.Phase
	return decision.Seconds
}

func (e *Engine) startTickLocked() {
	e.stopTickLocked()
	gen := e.tickGen
	e.stopTick = e.scheduler.Every(tickInterval, func() {
		e.tick(gen)
	})
}

func (e *Engine) stopTickLocked() {
	e.tickGen++
	if e.stopTick != nil {
		e.stopTick()
		e.stopTick = nil
	}
}

func (e *Engine) cancelAutoLocked() {
	if e.stopAuto != nil {
		e.stopAuto()
		e.stopAuto = nil
	}
}

func (e *Engine) rejectLocked(event string) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, event, e.state)
}

func (e *Engine) snapshotLocked() Snapshot {
	planned, remaining := e.countdown.Planned(), e.countdown.Remaining()
	if e.state == StateIdle {
		// Idle shows what Start would arm under the current settings.
		planned = DurationFor(e.phase, e.settings.Read())
		remaining = planned
	}
	snap := Snapshot{
		State:            e.state,
		Phase:            e.phase,
		PlannedSeconds:   planned,
		RemainingSeconds: remaining,
		CompletedWork:    e.cycle.CompletedWork(),
		AutoStartPending: e.stopAuto != nil,
		Session:          e.token,
	}
	if e.taskID != nil {
		id := *e.taskID
		snap.TaskID = &id
	}
	if e.run != nil && e.run.TaskID != nil {
		id := *e.run.TaskID
		snap.RunTaskID = &id
	}
	if e.next != nil {
		snap.NextPhase = e.next.Phase
		snap.NextSeconds = e.next.Seconds
	}
	return snap
}

func (e *Engine) emitLocked(event Event) {
	event.Snapshot = e.snapshotLocked()
	for _, ch := range e.events {
		select {
		case ch <- event:
		default:
		}
	}
}
