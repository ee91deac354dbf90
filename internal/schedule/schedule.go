// Package schedule runs deferred work on a single goroutine so that presentation
// state never needs locking.
package schedule

import (
	"context"
	"log/slog"
	"time"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from firing. It returns false if the callback
	// already fired or was already stopped.
	Stop() bool
}

// Scheduler runs callbacks in order on one goroutine.
type Scheduler interface {
	// After runs fn once d has elapsed.
	After(d time.Duration, fn func()) Timer
	// Post runs fn as soon as possible.
	Post(fn func())
}

// Loop is a Scheduler backed by real timers. Callbacks are executed by Run.
type Loop struct {
	queue chan func()
	done  chan struct{}
}

// NewLoop creates a new Loop. Nothing runs until Run is called.
func NewLoop() *Loop {
	return &Loop{
		queue: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Run executes queued callbacks until ctx is cancelled. It must be run in a separate goroutine.
func (l *Loop) Run(ctx context.Context) {
	slog.Debug("scheduler loop started")
	defer slog.Debug("scheduler loop stopped")
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.queue:
			fn()
		}
	}
}

// Post queues fn. Callbacks posted after the loop stopped are dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// After queues fn once d has elapsed.
func (l *Loop) After(d time.Duration, fn func()) Timer {
	return &loopTimer{t: time.AfterFunc(d, func() { l.Post(fn) })}
}

type loopTimer struct {
	t *time.Timer
}

func (lt *loopTimer) Stop() bool {
	return lt.t.Stop()
}
