package fileops

import (
	"context"

	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/types"
)

// step performs one file group per loop turn
func (b *Batch) step() bool {
	if b.phase != PhaseChecked {
		return false
	}
	if b.cursor >= len(b.units) {
		b.complete()
		return false
	}

	u := b.units[b.cursor]
	b.cursor++
	b.perform(u)
	if b.phase != PhaseChecked {
		return false
	}

	remaining := len(b.units) - b.cursor
	if u.failed && remaining > 0 {
		failure := Failure{Result: u.failure, Remaining: remaining}
		decision := b.engine.confirmer.ResumeAfterError(b, failure)
		if b.phase != PhaseChecked {
			return false
		}
		if decision != types.DecisionContinue {
			b.aborting = true
			b.abort()
			return false
		}
	}

	if remaining == 0 {
		b.complete()
		return false
	}
	return true
}

// perform runs the members of u in order. Once one fails the rest of the
// group is left untouched and the members already moved are moved back.
func (b *Batch) perform(u *unit) {
	for _, m := range u.members {
		if u.failed || b.aborting {
			break
		}
		res := b.engine.exec.PerformOne(b.ctx, m.handle)
		b.executed = true
		b.record(u, res)
	}
	if u.failed {
		b.rollback(u)
	}
}

// rollback reverts the done members of a failed move or rename group, last
// first. A member that cannot be moved back stays done and is reported.
func (b *Batch) rollback(u *unit) {
	switch b.kind {
	case types.KindMove, types.KindRename:
	default:
		return
	}

	for i := len(u.members) - 1; i >= 0; i-- {
		m := u.members[i]
		if m.state != stateDone {
			continue
		}
		res := b.engine.exec.Revert(context.WithoutCancel(b.ctx), m.handle)
		if res.Success {
			m.state = stateFailed
			continue
		}
		b.results = append(b.results, res)
		if b.onFileFailed != nil {
			b.onFileFailed(res)
		}
	}
}

// complete ends a batch whose files have all been processed. A batch in
// which nothing succeeded and something failed is discarded.
func (b *Batch) complete() {
	failed := b.failedUnits()
	if failed == 0 {
		b.finish(PhaseDone, 0)
		return
	}

	var first error
	for _, r := range b.results {
		if !r.Success && r.Error != nil {
			first = r.Error
			break
		}
	}
	if first == nil {
		first = errors.New(errors.ErrPerform, "file processing failed")
	}
	b.err = errors.Wrapf(first, errors.ErrPerform, "%d of %d file group(s) failed", failed, len(b.units))

	if b.succeeded() == 0 {
		b.finish(PhaseDiscard, types.DiscardFailed)
		return
	}
	b.finish(PhaseDone, 0)
}
