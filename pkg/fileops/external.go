package fileops

import (
	"github.com/arthur-debert/photobatch/pkg/editor"
	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/executor"
	"github.com/arthur-debert/photobatch/pkg/types"
)

// runExternal hands the batch to its external command. Blocking and
// filter commands run to completion right away; anything else runs as a
// task that reports after every invocation.
func (b *Batch) runExternal() {
	d, err := b.engine.editors.Lookup(b.editorKey)
	if err != nil {
		b.fail(err)
		return
	}
	req := b.editorRequest()

	flags := d.Flags()
	if flags.Has(editor.FlagBlocking) || flags.Has(editor.FlagFilter) {
		b.logger.Debug().Str("editor", d.Key).Msg("Running blocking command")
		b.executed = true
		out := b.engine.editorEx.RunBlocking(b.ctx, d, req)
		b.settleRemaining(out)
		if b.aborting {
			b.abort()
			return
		}
		b.complete()
		return
	}

	b.logger.Debug().Str("editor", d.Key).Msg("Starting command task")
	t := b.engine.editorEx.Start(b.ctx, d, req, b.editorStep, b.editorFinished)
	if !t.Done() {
		b.task = t
	}
}

func (b *Batch) editorRequest() editor.Request {
	reg := b.engine.reg
	req := editor.Request{Dest: b.dest}
	for _, u := range b.units {
		for _, m := range u.members {
			req.Files = append(req.Files, m.source)
			dest := ""
			if c := reg.Change(m.handle); c != nil {
				dest = c.Dest
			}
			req.Dests = append(req.Dests, dest)
		}
	}
	return req
}

// editorStep records one finished invocation. A failure with files left
// suspends the task until the user decides.
func (b *Batch) editorStep(t *editor.Task, inv *editor.Invocation) editor.Response {
	b.executed = true
	b.settle(inv.Files, inv.Failure == 0, inv.Err)

	if b.aborting {
		return editor.Skip
	}
	if inv.Failure == 0 || t.Remaining() == 0 {
		return editor.Continue
	}

	failure := Failure{Result: b.results[len(b.results)-1], Remaining: t.Remaining()}
	b.engine.loop.Post(func() { b.resumeOrSkip(t, failure) })
	return editor.Suspend
}

func (b *Batch) resumeOrSkip(t *editor.Task, failure Failure) {
	if !t.Suspended() {
		return
	}
	if !b.aborting && b.engine.confirmer.ResumeAfterError(b, failure) == types.DecisionContinue && !b.aborting {
		t.Resume()
		return
	}
	b.aborting = true
	t.Skip()
}

func (b *Batch) editorFinished(_ *editor.Task, out editor.Outcome) {
	b.task = nil
	if b.phase.Terminal() {
		return
	}
	b.settleRemaining(out)
	if b.aborting {
		b.abort()
		return
	}
	b.complete()
}

// settle records the result of files handled by one invocation
func (b *Batch) settle(files []string, ok bool, err error) {
	for _, f := range files {
		u, m := b.memberBySource(f)
		if m == nil || m.state != statePending {
			continue
		}
		b.record(u, b.externalResult(m, ok, err))
	}
}

// settleRemaining classifies members the invocations did not report.
// Unmatched and skipped files are left unperformed.
func (b *Batch) settleRemaining(out editor.Outcome) {
	b.settle(out.Done, true, nil)
	b.settle(out.Failed, false, out.Err)
	if out.Failures.Has(editor.FailNoFile) {
		// the command accepts none of the files: nothing could be done
		b.settle(out.Skipped, false, out.Err)
	}

	for _, f := range out.Skipped {
		if _, m := b.memberBySource(f); m != nil && m.state == statePending {
			m.state = stateSkipped
		}
	}

	for _, u := range b.units {
		for _, m := range u.members {
			if m.state != statePending {
				continue
			}
			if out.Fatal() {
				b.record(u, b.externalResult(m, false, out.Err))
			} else {
				m.state = stateSkipped
			}
		}
	}
}

func (b *Batch) externalResult(m *member, ok bool, err error) executor.Result {
	res := executor.Result{Handle: m.handle, Source: m.source, Success: ok}
	if c := b.engine.reg.Change(m.handle); c != nil {
		res.Kind = c.Kind
		res.Dest = c.Dest
	}
	if !ok {
		if err == nil {
			err = errors.Newf(errors.ErrEditorFailed, "%s failed on %s", b.editorKey, m.source)
		}
		res.Error = err
	}
	return res
}

func (b *Batch) memberBySource(path string) (*unit, *member) {
	for _, u := range b.units {
		for _, m := range u.members {
			if m.source == path {
				return u, m
			}
		}
	}
	return nil, nil
}
