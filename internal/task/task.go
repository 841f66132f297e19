package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalid = errors.New("invalid task")

type Task struct {
	ID                 int64      `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	EstimatedPomodoros int        `json:"estimatedPomodoros"`
	CompletedPomodoros int        `json:"completedPomodoros"`
	Completed          bool       `json:"completed"`
	CreatedAt          time.Time  `json:"createdAt"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
}

func NewTask(title, description string, estimated int) *Task {
	if estimated <= 0 {
		estimated = 1
	}
	return &Task{
		Title:              strings.TrimSpace(title),
		Description:        strings.TrimSpace(description),
		EstimatedPomodoros: estimated,
	}
}

func (t *Task) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if t.EstimatedPomodoros < 1 {
		return fmt.Errorf("%w: estimated pomodoros must be at least 1", ErrInvalid)
	}
	return nil
}

// Remaining is the number of estimated pomodoros not yet done.
func (t *Task) Remaining() int {
	if t.CompletedPomodoros >= t.EstimatedPomodoros {
		return 0
	}
	return t.EstimatedPomodoros - t.CompletedPomodoros
}

func (t *Task) IsOverEstimate() bool {
	return t.CompletedPomodoros > t.EstimatedPomodoros
}
