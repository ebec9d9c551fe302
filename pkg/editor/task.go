package editor

import (
	"context"

	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/google/uuid"
)

// Response tells a Task what to do after an invocation finished
type Response int

const (
	// Continue runs the next invocation
	Continue Response = iota
	// Skip abandons the remaining invocations without an error
	Skip
	// Suspend waits for an explicit Resume or Skip
	Suspend
)

// String returns the string representation of the response
func (r Response) String() string {
	switch r {
	case Continue:
		return "continue"
	case Skip:
		return "skip"
	case Suspend:
		return "suspend"
	default:
		return "unknown"
	}
}

// StepFunc is called on the loop goroutine after each invocation
type StepFunc func(t *Task, inv *Invocation) Response

// FinishFunc is called on the loop goroutine once the task is over
type FinishFunc func(t *Task, out Outcome)

type taskState int

const (
	stateReady taskState = iota
	stateRunning
	stateSuspended
	stateDone
)

// Task is a callback-driven run of a descriptor. All methods must be
// called from the loop goroutine.
type Task struct {
	id     string
	exec   *Executor
	desc   *Descriptor
	ctx    context.Context
	step   StepFunc
	finish FinishFunc

	invs []*Invocation
	next int
	out  Outcome

	state         taskState
	skipRequested bool
}

// Start schedules the invocations for req on the executor's loop and
// returns the handle used to resume or skip them. finish is always called
// exactly once, even when the command cannot be prepared.
func (e *Executor) Start(ctx context.Context, d *Descriptor, req Request, step StepFunc, finish FinishFunc) *Task {
	t := &Task{
		id:     uuid.NewString(),
		exec:   e,
		desc:   d,
		ctx:    ctx,
		step:   step,
		finish: finish,
	}

	invs, out := e.Prepare(d, req)
	t.invs = invs
	t.out = out
	e.track(t)

	if e.loop == nil {
		t.out.fail(FailCantExec, errors.New(errors.ErrInternal, "editor executor has no loop"))
		t.complete()
		return t
	}

	e.logger.Debug().
		Str("task", t.id).
		Str("editor", d.Key).
		Int("invocations", len(invs)).
		Msg("Editor task started")

	if out.Fatal() {
		e.loop.Post(t.complete)
	} else {
		e.loop.Post(t.launch)
	}
	return t
}

// ID returns the task's resumption token
func (t *Task) ID() string { return t.id }

// Done reports whether the task has finished
func (t *Task) Done() bool { return t.state == stateDone }

// Suspended reports whether the task waits for Resume or Skip
func (t *Task) Suspended() bool { return t.state == stateSuspended }

// Remaining returns the number of invocations that have not started
func (t *Task) Remaining() int { return len(t.invs) - t.next }

// Outcome returns the outcome so far
func (t *Task) Outcome() Outcome { return t.out }

// Resume continues a suspended task. It reports false if the task was not
// suspended.
func (t *Task) Resume() bool {
	if t.state != stateSuspended {
		return false
	}
	t.state = stateReady
	t.exec.loop.Post(t.launch)
	return true
}

// Skip abandons every invocation that has not started. A running
// invocation is allowed to finish first.
func (t *Task) Skip() {
	switch t.state {
	case stateDone:
		return
	case stateSuspended:
		t.skipRest()
		t.complete()
	default:
		t.skipRequested = true
	}
}

func (t *Task) launch() {
	if t.state == stateDone {
		return
	}
	if t.skipRequested {
		t.skipRest()
		t.complete()
		return
	}
	if t.next >= len(t.invs) {
		t.complete()
		return
	}

	inv := t.invs[t.next]
	t.next++
	t.state = stateRunning

	l := t.exec.loop
	l.Hold()
	go func() {
		t.exec.run(t.ctx, t.desc, inv)
		l.Post(func() { t.finished(inv) })
		l.Release()
	}()
}

func (t *Task) finished(inv *Invocation) {
	t.out.record(inv)
	t.state = stateReady

	if t.skipRequested {
		t.skipRest()
		t.complete()
		return
	}

	resp := Continue
	if t.step != nil {
		resp = t.step(t, inv)
	}
	if t.state == stateDone {
		// the step function skipped or finished the task itself
		return
	}

	switch resp {
	case Skip:
		t.skipRest()
		t.complete()
	case Suspend:
		t.state = stateSuspended
		t.exec.logger.Debug().Str("task", t.id).Msg("Editor task suspended")
	default:
		t.exec.loop.Post(t.launch)
	}
}

func (t *Task) skipRest() {
	if t.next >= len(t.invs) {
		return
	}
	for _, inv := range t.invs[t.next:] {
		t.out.Skipped = append(t.out.Skipped, inv.Files...)
	}
	t.next = len(t.invs)
	t.out.Failures |= FailSkipped
}

func (t *Task) complete() {
	if t.state == stateDone {
		return
	}
	t.state = stateDone
	t.exec.untrack(t)
	t.exec.logger.Debug().
		Str("task", t.id).
		Str("status", t.out.Status().String()).
		Msg("Editor task finished")
	if t.finish != nil {
		t.finish(t, t.out)
	}
}
