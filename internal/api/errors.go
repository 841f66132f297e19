package api

import (
	"errors"
	"net/http"

	"pomodoro_tui/internal/pomodoro"
	"pomodoro_tui/internal/settings"
	"pomodoro_tui/internal/store"
	"pomodoro_tui/internal/task"
)

type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewError(status int, code, message string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func Internal(message string) *APIError {
	if message == "" {
		message = "internal server error"
	}
	return NewError(http.StatusInternalServerError, "internal_error", message)
}

func BadRequest(code, message string) *APIError {
	return NewError(http.StatusBadRequest, code, message)
}

func NotFound(code, message string) *APIError {
	return NewError(http.StatusNotFound, code, message)
}

func Conflict(code, message string, details any) *APIError {
	err := NewError(http.StatusConflict, code, message)
	err.Details = details
	return err
}

// toAPIError maps domain errors onto HTTP errors. Unknown errors become
// internal errors and the boolean reports that they should be logged.
func toAPIError(err error) (*APIError, bool) {
	switch {
	case errors.Is(err, pomodoro.ErrInvalidTransition):
		return Conflict("invalid_transition", err.Error(), nil), false
	case errors.Is(err, pomodoro.ErrInvalidPhase):
		return BadRequest("invalid_phase", err.Error()), false
	case errors.Is(err, settings.ErrInvalid):
		return BadRequest("invalid_settings", err.Error()), false
	case errors.Is(err, task.ErrInvalid):
		return BadRequest("invalid_task", err.Error()), false
	case errors.Is(err, store.ErrNotFound):
		return NotFound("not_found", err.Error()), false
	default:
		return Internal(""), true
	}
}
