package timer

import (
	"sync"
	"time"
)

// Clock reports wall-clock time.
type Clock interface {
	Now() time.Time
}

// Scheduler runs callbacks on a fixed cadence or once after a delay. The
// returned function cancels any call that has not started yet.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (stop func())
	After(delay time.Duration, fn func()) (stop func())
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System is the process wall clock.
var System Clock = systemClock{}

// Ticker is a Scheduler backed by time.Ticker goroutines.
type Ticker struct{}

func NewTicker() *Ticker {
	return &Ticker{}
}

func (t *Ticker) Every(interval time.Duration, fn func()) func() {
	stopChan := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stopChan:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stopChan) })
	}
}

func (t *Ticker) After(delay time.Duration, fn func()) func() {
	timer := time.AfterFunc(delay, fn)
	return func() {
		timer.Stop()
	}
}
