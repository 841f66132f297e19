package pomodoro

// Phase is the kind of timer run.
type Phase string

const (
	PhaseWork       Phase = "work"
	PhaseShortBreak Phase = "short_break"
	PhaseLongBreak  Phase = "long_break"
)

func (p Phase) Valid() bool {
	return p == PhaseWork || p == PhaseShortBreak || p == PhaseLongBreak
}

func (p Phase) IsBreak() bool {
	return p == PhaseShortBreak || p == PhaseLongBreak
}

// Label is the human-readable phase name.
func (p Phase) Label() string {
	switch p {
	case PhaseWork:
		return "Focus"
	case PhaseShortBreak:
		return "Short Break"
	case PhaseLongBreak:
		return "Long Break"
	default:
		return string(p)
	}
}

// State is the timer state machine state.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)
