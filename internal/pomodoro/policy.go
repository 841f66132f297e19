package pomodoro

import "pomodoro_tui/internal/settings"

// CycleCounter counts fully completed work phases.
type CycleCounter struct {
	completedWork int
}

// Record counts one completed work phase and returns the new total.
func (c *CycleCounter) Record() int {
	c.completedWork++
	return c.completedWork
}

func (c *CycleCounter) Reset() {
	c.completedWork = 0
}

func (c *CycleCounter) CompletedWork() int {
	return c.completedWork
}

// Decision is the phase that follows a completed one.
type Decision struct {
	Phase   Phase
	Seconds int
}

// Next decides what follows the finished phase. completedWork must already
// include the finished phase when it was a work phase. The interval is taken
// from s at call time.
func Next(finished Phase, completedWork int, s settings.Settings) Decision {
	if finished != PhaseWork {
		return Decision{Phase: PhaseWork, Seconds: s.WorkDuration}
	}
	if isLongBreak(completedWork, s.LongBreakInterval) {
		return Decision{Phase: PhaseLongBreak, Seconds: s.LongBreakDuration}
	}
	return Decision{Phase: PhaseShortBreak, Seconds: s.ShortBreakDuration}
}

func isLongBreak(completedWork, interval int) bool {
	if interval <= 0 || completedWork <= 0 {
		return false
	}
	return completedWork%interval == 0
}

// DurationFor returns the configured length of a phase in seconds.
func DurationFor(p Phase, s settings.Settings) int {
	switch p {
	case PhaseShortBreak:
		return s.ShortBreakDuration
	case PhaseLongBreak:
		return s.LongBreakDuration
	default:
		return s.WorkDuration
	}
}

// autoStarts reports whether the phase after finished starts on its own.
func autoStarts(finished Phase, s settings.Settings) bool {
	if finished == PhaseWork {
		return s.AutoStartBreaks
	}
	return s.AutoStartPomodoros
}
