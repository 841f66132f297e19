// Package timertest provides a manually driven clock and scheduler for
// deterministic timer tests.
package timertest

import (
	"sync"
	"time"
)

// Clock is a timer.Clock that only moves when told to.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type job struct {
	id       int
	due      time.Time
	interval time.Duration
	fn       func()
}

// Scheduler is a timer.Scheduler whose callbacks fire only from Advance.
type Scheduler struct {
	mu     sync.Mutex
	clock  *Clock
	nextID int
	jobs   map[int]*job
}

func NewScheduler(clock *Clock) *Scheduler {
	return &Scheduler{
		clock: clock,
		jobs:  make(map[int]*job),
	}
}

func (s *Scheduler) Every(interval time.Duration, fn func()) func() {
	return s.add(interval, interval, fn)
}

func (s *Scheduler) After(delay time.Duration, fn func()) func() {
	return s.add(delay, 0, fn)
}

func (s *Scheduler) add(delay, interval time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.jobs[id] = &job{
		id:       id,
		due:      s.clock.Now().Add(delay),
		interval: interval,
		fn:       fn,
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.jobs, id)
	}
}

// Pending reports how many callbacks are still scheduled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Advance moves the clock forward by d and fires every callback that falls
// due on the way, in due order, with the clock set to each due instant.
func (s *Scheduler) Advance(d time.Duration) {
	target := s.clock.Now().Add(d)

	for {
		s.mu.Lock()
		var next *job
		for _, j := range s.jobs {
			if j.due.After(target) {
				continue
			}
			if next == nil || j.due.Before(next.due) || (j.due.Equal(next.due) && j.id < next.id) {
				next = j
			}
		}
		if next == nil {
			s.mu.Unlock()
			break
		}

		due := next.due
		if next.interval > 0 {
			next.due = next.due.Add(next.interval)
		} else {
			delete(s.jobs, next.id)
		}
		fn := next.fn
		s.mu.Unlock()

		s.clock.Set(due)
		fn()
	}

	s.clock.Set(target)
}

// Suspend moves the clock forward by d without firing anything, the way a
// suspended process misses its ticks. Periodic callbacks skip the missed
// slots instead of firing them in a burst afterwards.
func (s *Scheduler) Suspend(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock.Advance(d)
	now := s.clock.Now()
	for _, j := range s.jobs {
		if j.interval <= 0 {
			continue
		}
		for !j.due.After(now) {
			j.due = j.due.Add(j.interval)
		}
	}
}
