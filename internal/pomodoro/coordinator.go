package pomodoro

import (
	"context"
	"io"
	"log"
	"sync"
	"time"
)

const defaultCallTimeout = 5 * time.Second

// SessionLog persists one record per armed phase.
type SessionLog interface {
	Start(ctx context.Context, taskID *int64, phase Phase, plannedSeconds int) (string, error)
	Complete(ctx context.Context, ref string, actualSeconds int) error
	Abandon(ctx context.Context, ref string, actualSeconds int) error
}

// TaskCounter credits a completed work phase to a task.
type TaskCounter interface {
	IncrementPomodoro(ctx context.Context, taskID int64) error
}

type openRecord struct {
	token uint64
	ref   string
}

// Coordinator bridges engine phase changes to the session log and task
// store. Calls run in submission order on a worker goroutine, so a slow or
// failing store never holds up the countdown. Failures are logged and
// dropped.
type Coordinator struct {
	sessions SessionLog
	tasks    TaskCounter
	logger   *log.Logger
	timeout  time.Duration

	mu     sync.Mutex
	queue  []func()
	open   *openRecord
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

// NewCoordinator starts the worker. A nil logger discards output.
func NewCoordinator(sessions SessionLog, tasks TaskCounter, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	c := &Coordinator{
		sessions: sessions,
		tasks:    tasks,
		logger:   logger,
		timeout:  defaultCallTimeout,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *Coordinator) PhaseStarted(run Run) {
	c.enqueue(func() {
		ctx, cancel := c.callContext()
		defer cancel()

		ref, err := c.sessions.Start(ctx, run.TaskID, run.Phase, run.PlannedSeconds)
		if err != nil {
			c.logger.Printf("sessions: start %s: %v", run.Phase, err)
			return
		}

		c.mu.Lock()
		c.open = &openRecord{token: run.Token, ref: ref}
		c.mu.Unlock()
	})
}

func (c *Coordinator) PhaseCompleted(run Run, elapsedSeconds int) {
	c.enqueue(func() {
		ctx, cancel := c.callContext()
		defer cancel()

		if ref, ok := c.takeOpen(run.Token); ok {
			if err := c.sessions.Complete(ctx, ref, elapsedSeconds); err != nil {
				c.logger.Printf("sessions: complete %s: %v", ref, err)
			}
		}

		if run.Phase == PhaseWork && run.TaskID != nil && c.tasks != nil {
			if err := c.tasks.IncrementPomodoro(ctx, *run.TaskID); err != nil {
				c.logger.Printf("tasks: increment %d: %v", *run.TaskID, err)
			}
		}
	})
}

func (c *Coordinator) PhaseAbandoned(run Run, elapsedSeconds int) {
	c.enqueue(func() {
		ref, ok := c.takeOpen(run.Token)
		if !ok {
			return
		}

		ctx, cancel := c.callContext()
		defer cancel()
		if err := c.sessions.Abandon(ctx, ref, elapsedSeconds); err != nil {
			c.logger.Printf("sessions: abandon %s: %v", ref, err)
		}
	})
}

// OpenRecord returns the reference of the record currently open, if any.
func (c *Coordinator) OpenRecord() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open == nil {
		return "", false
	}
	return c.open.ref, true
}

// Flush blocks until every call submitted so far has finished.
func (c *Coordinator) Flush() {
	done := make(chan struct{})
	if !c.enqueue(func() { close(done) }) {
		return
	}
	<-done
}

// Close drains pending calls and stops the worker.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		<-c.done
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.signal()
	<-c.done
}

func (c *Coordinator) takeOpen(token uint64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open == nil || c.open.token != token {
		return "", false
	}
	ref := c.open.ref
	c.open = nil
	return ref, true
}

func (c *Coordinator) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

func (c *Coordinator) enqueue(job func()) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.queue = append(c.queue, job)
	c.mu.Unlock()

	c.signal()
	return true
}

func (c *Coordinator) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Coordinator) run() {
	defer close(c.done)

	for {
		c.mu.Lock()
		jobs := c.queue
		c.queue = nil
		closed := c.closed
		c.mu.Unlock()

		for _, job := range jobs {
			job()
		}

		if len(jobs) == 0 {
			if closed {
				return
			}
			<-c.wake
		}
	}
}
