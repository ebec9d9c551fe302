// Package loop is the single goroutine task loop the batch engine runs on.
//
// Work reaches the loop in two ways. Post queues a one-shot callback and is
// safe to call from any goroutine; it is how background waits (an external
// command exiting) hand their result back. Idle registers a step function
// that is called repeatedly, one step per turn, until it reports it is done
// or its Source is removed. Posted callbacks always run before the next idle
// step.
//
// Hold and Release count outstanding background work so that Run does not
// return while a result is still on its way.
package loop

import (
	"context"
	"sync"

	"github.com/arthur-debert/photobatch/pkg/logging"
	"github.com/rs/zerolog"
)

// Loop runs callbacks on the goroutine that calls Run
type Loop struct {
	mu     sync.Mutex
	posted []func()
	holds  int
	wake   chan struct{}

	// only touched from the loop goroutine
	idle []*Source
	next int

	logger zerolog.Logger
}

// Source is a registered idle step
type Source struct {
	loop    *Loop
	fn      func() bool
	removed bool
}

// New creates an empty loop
func New() *Loop {
	return &Loop{
		wake:   make(chan struct{}, 1),
		logger: logging.GetLogger("loop"),
	}
}

// Post queues fn to run on the loop goroutine. Safe for concurrent use.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
	l.signal()
}

// Idle registers fn to be called once per turn while it returns true.
// Must be called from the loop goroutine or before Run.
func (l *Loop) Idle(fn func() bool) *Source {
	s := &Source{loop: l, fn: fn}
	l.idle = append(l.idle, s)
	return s
}

// Remove stops the source. Removing twice is harmless.
func (s *Source) Remove() {
	if s == nil || s.removed {
		return
	}
	s.removed = true
	s.loop.drop(s)
}

// Active reports whether the source will be called again
func (s *Source) Active() bool {
	return s != nil && !s.removed
}

// Hold records outstanding background work. Safe for concurrent use.
func (l *Loop) Hold() {
	l.mu.Lock()
	l.holds++
	l.mu.Unlock()
}

// Release ends a Hold. Safe for concurrent use.
func (l *Loop) Release() {
	l.mu.Lock()
	if l.holds > 0 {
		l.holds--
	}
	l.mu.Unlock()
	l.signal()
}

// Pending reports whether any work is queued, registered or held
func (l *Loop) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.posted) > 0 || len(l.idle) > 0 || l.holds > 0
}

// RunUntilIdle runs the loop until there is nothing left to do
func (l *Loop) RunUntilIdle() {
	_ = l.Run(context.Background())
}

// Run dispatches work until nothing is queued, registered or held, or ctx
// is done. It returns ctx.Err() in the latter case.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if l.runPosted() {
			continue
		}

		if len(l.idle) > 0 {
			l.step()
			continue
		}

		l.mu.Lock()
		queued, holds := len(l.posted), l.holds
		l.mu.Unlock()
		if queued > 0 {
			continue
		}
		if holds == 0 {
			return nil
		}

		select {
		case <-l.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Loop) runPosted() bool {
	l.mu.Lock()
	batch := l.posted
	l.posted = nil
	l.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch) > 0
}

func (l *Loop) step() {
	if l.next >= len(l.idle) {
		l.next = 0
	}
	s := l.idle[l.next]
	l.next++

	if !s.fn() {
		s.Remove()
	}
}

func (l *Loop) drop(s *Source) {
	for i, cur := range l.idle {
		if cur == s {
			l.idle = append(l.idle[:i], l.idle[i+1:]...)
			if l.next > i {
				l.next--
			}
			l.logger.Trace().Int("sources", len(l.idle)).Msg("Idle source removed")
			return
		}
	}
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
