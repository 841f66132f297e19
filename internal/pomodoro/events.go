package pomodoro

// EventType defines the type of engine event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventTick        EventType = "tick"
	EventCompleted   EventType = "completed"
	EventCycleReset  EventType = "cycle_reset"
	EventTaskChange  EventType = "task_change"
)

// Snapshot is a consistent read of the engine state.
type Snapshot struct {
	State            State  `json:"state"`
	Phase            Phase  `json:"phase"`
	PlannedSeconds   int    `json:"plannedSeconds"`
	RemainingSeconds int    `json:"remainingSeconds"`
	CompletedWork    int    `json:"completedWork"`
	TaskID           *int64 `json:"taskId,omitempty"`
	RunTaskID        *int64 `json:"runTaskId,omitempty"`
	NextPhase        Phase  `json:"nextPhase,omitempty"`
	NextSeconds      int    `json:"nextSeconds,omitempty"`
	AutoStartPending bool   `json:"autoStartPending"`
	Session          uint64 `json:"session"`
}

// Event is delivered to subscribers after every observable change.
type Event struct {
	Type     EventType
	Snapshot Snapshot
	// Finished is the phase that just ended, set on EventCompleted.
	Finished Phase
}
