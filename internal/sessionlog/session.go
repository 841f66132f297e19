package sessionlog

import (
	"time"

	"pomodoro_tui/internal/pomodoro"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Session is one armed phase as it was recorded.
type Session struct {
	ID             string         `json:"id"`
	TaskID         *int64         `json:"taskId,omitempty"`
	Phase          pomodoro.Phase `json:"phase"`
	PlannedSeconds int            `json:"plannedSeconds"`
	ActualSeconds  int            `json:"actualSeconds"`
	StartedAt      time.Time      `json:"startedAt"`
	EndedAt        *time.Time     `json:"endedAt,omitempty"`
	Status         Status         `json:"status"`
}

// SessionWithTask pairs a Session with the title of its task, if any.
type SessionWithTask struct {
	Session
	TaskTitle string `json:"taskTitle,omitempty"`
}

// Summary aggregates completed work phases.
type Summary struct {
	CompletedWork int `json:"completedWork"`
	FocusSeconds  int `json:"focusSeconds"`
}
