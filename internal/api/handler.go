package api

import (
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pomodoro_tui/internal/pomodoro"
	"pomodoro_tui/internal/sessionlog"
	"pomodoro_tui/internal/settings"
	"pomodoro_tui/internal/task"
)

// Handler serves the timer, tasks, history and settings over HTTP.
type Handler struct {
	engine   *pomodoro.Engine
	tasks    *task.Repository
	sessions *sessionlog.Repository
	settings *settings.Store
	logger   *log.Logger
}

type setTaskRequest struct {
	TaskID *int64 `json:"taskId"`
}

type selectPhaseRequest struct {
	Phase pomodoro.Phase `json:"phase"`
}

type createTaskRequest struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	EstimatedPomodoros int    `json:"estimatedPomodoros"`
}

// updateTaskRequest leaves fields that are absent unchanged.
type updateTaskRequest struct {
	Title              *string `json:"title"`
	Description        *string `json:"description"`
	EstimatedPomodoros *int    `json:"estimatedPomodoros"`
}

type setCompletedRequest struct {
	Completed bool `json:"completed"`
}

func NewHandler(
	engine *pomodoro.Engine,
	tasks *task.Repository,
	sessions *sessionlog.Repository,
	store *settings.Store,
	logger *log.Logger,
) *Handler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Handler{
		engine:   engine,
		tasks:    tasks,
		sessions: sessions,
		settings: store,
		logger:   logger,
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	apiErr, unexpected := toAPIError(err)
	if unexpected {
		h.logger.Printf("api: %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	writeError(c, apiErr)
}

func (h *Handler) GetTimer(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"timer": h.engine.Snapshot()})
}

// transition adapts an engine command to a handler.
func (h *Handler) transition(command func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := command(); err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"timer": h.engine.Snapshot()})
	}
}

func (h *Handler) Start(c *gin.Context)  { h.transition(h.engine.Start)(c) }
func (h *Handler) Pause(c *gin.Context)  { h.transition(h.engine.Pause)(c) }
func (h *Handler) Resume(c *gin.Context) { h.transition(h.engine.Resume)(c) }
func (h *Handler) Reset(c *gin.Context)  { h.transition(h.engine.Reset)(c) }

func (h *Handler) ResetCycle(c *gin.Context) {
	h.engine.ResetCycle()
	c.JSON(http.StatusOK, gin.H{"timer": h.engine.Snapshot()})
}

func (h *Handler) SetTask(c *gin.Context) {
	var req setTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}

	if req.TaskID == nil {
		h.engine.ClearTask()
	} else {
		t, err := h.tasks.GetByID(c.Request.Context(), *req.TaskID)
		if err != nil {
			h.fail(c, err)
			return
		}
		if t.Completed {
			writeError(c, Conflict("task_completed", "task is already completed", gin.H{"task": t}))
			return
		}
		h.engine.SetTask(t.ID)
	}
	c.JSON(http.StatusOK, gin.H{"timer": h.engine.Snapshot()})
}

func (h *Handler) SelectPhase(c *gin.Context) {
	var req selectPhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}
	h.transition(func() error { return h.engine.SelectPhase(req.Phase) })(c)
}

func (h *Handler) ListTasks(c *gin.Context) {
	all := c.Query("all") == "true"
	tasks, err := h.tasks.GetAll(c.Request.Context(), all)
	if err != nil {
		h.fail(c, err)
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *Handler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}

	t, err := h.tasks.Create(c.Request.Context(), req.Title, req.Description, req.EstimatedPomodoros)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": t})
}

func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}

	ctx := c.Request.Context()
	t, err := h.tasks.GetByID(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = strings.TrimSpace(*req.Description)
	}
	if req.EstimatedPomodoros != nil {
		t.EstimatedPomodoros = *req.EstimatedPomodoros
	}
	if err := h.tasks.Update(ctx, t); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": t})
}

func (h *Handler) SetTaskCompleted(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	var req setCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}

	ctx := c.Request.Context()
	if err := h.tasks.SetCompleted(ctx, id, req.Completed); err != nil {
		h.fail(c, err)
		return
	}
	if req.Completed {
		h.engine.ForgetTask(id)
	}
	t, err := h.tasks.GetByID(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": t})
}

func (h *Handler) DeleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.engine.ForgetTask(id)
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListSessions(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		sessions []sessionlog.SessionWithTask
		err      error
	)
	if raw := c.Query("taskId"); raw != "" {
		id, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			writeError(c, BadRequest("invalid_task_id", "taskId must be an integer"))
			return
		}
		sessions, err = h.sessions.ListByTask(ctx, id)
	} else {
		limit := sessionlog.DefaultListLimit
		if raw := c.Query("limit"); raw != "" {
			if parsed, parseErr := strconv.Atoi(raw); parseErr == nil {
				limit = parsed
			}
		}
		sessions, err = h.sessions.List(ctx, limit)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	if sessions == nil {
		sessions = []sessionlog.SessionWithTask{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": h.settings.Read()})
}

// UpdateSettings applies the fields present in the body over the current
// settings.
func (h *Handler) UpdateSettings(c *gin.Context) {
	next := h.settings.Read()
	if err := c.ShouldBindJSON(&next); err != nil {
		invalidJSON(c)
		return
	}
	if err := h.settings.Update(next); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": h.settings.Read()})
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, BadRequest("invalid_task_id", "task id must be an integer"))
		return 0, false
	}
	return id, true
}
