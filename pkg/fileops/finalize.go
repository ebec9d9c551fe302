package fileops

import (
	"github.com/arthur-debert/photobatch/pkg/filedata"
	"github.com/arthur-debert/photobatch/pkg/types"
)

// finish ends the batch in phase and tears it down. DONE runs the
// finalize hook and applies every performed change. DISCARD runs the
// discard hook instead but still applies what was performed, since those
// files did change on disk. CANCEL only frees. The completion callback is
// called last, exactly once.
func (b *Batch) finish(phase Phase, cause types.DiscardCause) {
	if b.phase.Terminal() {
		return
	}
	dest := b.finalDest()
	b.setPhase(phase)

	if b.source != nil {
		b.source.Remove()
		b.source = nil
	}
	if b.task != nil {
		t := b.task
		b.task = nil
		t.Skip()
	}

	for _, u := range b.units {
		for _, m := range u.followers {
			b.teardown(m, b.followerState(u), cause)
		}
		for _, m := range u.members {
			state := m.state
			if state == statePending && u.failed {
				state = stateFailed
			}
			b.teardown(m, state, cause)
		}
	}

	succeeded, failed := b.succeeded(), b.failedUnits()
	b.release()
	b.cancelCtx()

	event := b.logger.Info()
	if phase != PhaseDone {
		event = b.logger.Warn()
	}
	event.
		Str("phase", phase.String()).
		Int("succeeded", succeeded).
		Int("failed", failed).
		Bool("executed", b.executed).
		Str("dest", dest).
		Msg("Batch finished")

	if b.done != nil {
		b.done(phase == PhaseDone, dest, b.data)
	}
}

func (b *Batch) followerState(u *unit) memberState {
	if u.failed {
		return stateFailed
	}
	for _, m := range u.members {
		if m.state != stateDone {
			return statePending
		}
	}
	return stateDone
}

func (b *Batch) teardown(m *member, state memberState, cause types.DiscardCause) {
	reg := b.engine.reg
	defer reg.FreeChange(m.handle)

	if b.phase == PhaseCancel {
		return
	}

	switch state {
	case stateDone:
		if b.phase == PhaseDone {
			if b.finalizeHook != nil {
				b.finalizeHook(m.source)
			}
		} else if b.discardHook != nil {
			b.discardHook(m.source, cause)
		}
		if err := reg.Apply(m.handle); err != nil {
			b.logger.Warn().Err(err).Str("path", m.source).Msg("Cannot apply change")
		}
	case stateFailed:
		if b.discardHook != nil {
			b.discardHook(m.source, types.DiscardFailed)
		}
	case statePending:
		if b.phase == PhaseDiscard && b.discardHook != nil {
			b.discardHook(m.source, cause)
		}
	}
}

// release frees every change and drops the references taken at
// enrollment
func (b *Batch) release() {
	reg := b.engine.reg
	for _, u := range b.units {
		for _, m := range u.all() {
			reg.FreeChange(m.handle)
		}
	}
	for _, h := range b.refs {
		reg.Unref(h)
	}
	if b.dir != nil {
		b.dir.Release(reg)
	}

	b.refs = nil
	b.dir = nil
	b.units = nil
	b.state = make(map[filedata.Handle]*member)
	b.cursor = 0
}
