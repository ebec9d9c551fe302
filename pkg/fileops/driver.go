package fileops

import (
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/filedata"
	"github.com/arthur-debert/photobatch/pkg/types"
)

// advance walks the batch through the phases that need no waiting
func (b *Batch) advance() {
	for !b.phase.Terminal() {
		switch b.phase {
		case PhaseStart:
			b.start()
		case PhaseIntermediate:
			b.intermediate()
		case PhaseEntering:
			b.entering()
		case PhaseChecked:
			b.dispatch()
			return
		}
	}
}

// Cancel stops the batch. Before anything was performed the batch ends in
// CANCEL; once files were changed it ends in DISCARD so the changed files
// keep their new identity. Must be called on the loop goroutine.
func (b *Batch) Cancel() {
	if b.phase.Terminal() || b.aborting {
		return
	}
	b.aborting = true
	b.logger.Info().Str("phase", b.phase.String()).Msg("Batch cancel requested")

	if b.phase != PhaseChecked {
		b.finish(PhaseCancel, types.DiscardCancelled)
		return
	}
	if b.task != nil {
		// the task reports back through editorFinished
		b.task.Skip()
		return
	}
	b.abort()
}

// CancelAsync schedules Cancel on the loop. Safe for concurrent use.
func (b *Batch) CancelAsync() {
	b.engine.loop.Post(b.Cancel)
}

func (b *Batch) abort() {
	if b.succeeded() > 0 {
		b.finish(PhaseDiscard, types.DiscardCancelled)
		return
	}
	b.finish(PhaseCancel, types.DiscardCancelled)
}

func (b *Batch) needsDestination() bool {
	switch b.kind {
	case types.KindCopy, types.KindMove, types.KindRunExternalFilter:
		return true
	default:
		return false
	}
}

func (b *Batch) start() {
	if b.dest != "" {
		dest, err := filedata.Canonical(b.dest)
		if err != nil {
			b.fail(err)
			return
		}
		b.dest = dest
	}

	var err error
	switch b.kind {
	case types.KindDeleteFolder, types.KindRenameFolder:
		err = b.enrollFolder()
	case types.KindCreateFolder:
		err = b.enrollCreate()
	default:
		err = b.enrollFiles()
	}
	if err != nil {
		b.fail(err)
		return
	}

	b.logger.Debug().Int("entries", len(b.state)).Msg("Batch enrolled")
	if b.needsDestination() && b.dest == "" {
		b.setPhase(PhaseIntermediate)
		return
	}
	b.setPhase(PhaseEntering)
}

// fail cancels a batch that could not get past its start
func (b *Batch) fail(err error) {
	b.err = err
	b.logger.Error().Err(err).Msg("Batch cannot start")
	b.finish(PhaseCancel, types.DiscardCancelled)
}

func (b *Batch) track(h filedata.Handle) *member {
	m := &member{handle: h, source: b.engine.reg.Path(h)}
	b.state[h] = m
	return m
}

type target struct {
	index int
	path  string
}

func (b *Batch) enrollFiles() error {
	reg := b.engine.reg

	targets := make([]target, 0, len(b.paths))
	for i, p := range b.paths {
		canonical, err := filedata.Canonical(p)
		if err != nil {
			return err
		}
		targets = append(targets, target{index: i, path: canonical})
	}

	// with grouping, a sidecar whose primary is also listed waits for the
	// primary to claim it; every other target keeps the caller's order
	claimed := make(map[string]bool)
	if b.withSidecars {
		for _, t := range targets {
			if reg.IsSidecarName(t.path) {
				continue
			}
			for _, c := range reg.SidecarCandidates(t.path) {
				claimed[c] = true
			}
		}
	}
	var ordered, postponed []target
	for _, t := range targets {
		if claimed[t.path] && reg.IsSidecarName(t.path) {
			postponed = append(postponed, t)
			continue
		}
		ordered = append(ordered, t)
	}

	for _, t := range append(ordered, postponed...) {
		if h, ok := reg.Lookup(t.path); ok && b.state[h] != nil {
			// a listed sidecar keeps the name the caller gave it
			if b.kind == types.KindRename && claimed[t.path] && reg.IsSidecar(h) {
				if err := reg.SetDest(h, b.destFor(t)); err != nil {
					return err
				}
			}
			continue
		}

		kind := b.kind
		group := b.withSidecars
		if b.kind == types.KindDelete && b.isLink(t.path) {
			kind = types.KindDeleteLink
			group = false
		}

		var h filedata.Handle
		var err error
		if group {
			h, err = reg.Group(t.path)
		} else {
			h, err = reg.Get(t.path)
		}
		if err != nil {
			return err
		}
		b.refs = append(b.refs, h)

		if err := reg.NewGroupChange(h, kind, b.destFor(t), group); err != nil {
			return err
		}

		u := &unit{primary: h, members: []*member{b.track(h)}}
		if group {
			for _, sc := range reg.Sidecars(h) {
				u.members = append(u.members, b.track(sc))
			}
		}
		b.units = append(b.units, u)
	}
	return nil
}

func (b *Batch) isLink(path string) bool {
	info, err := b.engine.reg.FS().Lstat(path)
	return err == nil && info.Mode()&fs.ModeSymlink != 0
}

func (b *Batch) destFor(t target) string {
	switch b.kind {
	case types.KindRename:
		return b.dests[t.index]
	case types.KindCopy, types.KindMove, types.KindRunExternalFilter:
		if b.dest == "" {
			return ""
		}
		return filepath.Join(b.dest, filepath.Base(t.path))
	default:
		return ""
	}
}

func (b *Batch) enrollCreate() error {
	reg := b.engine.reg
	h, err := reg.Get(b.dest)
	if err != nil {
		return err
	}
	b.refs = append(b.refs, h)
	if err := reg.NewChange(h, types.KindCreateFolder, b.dest); err != nil {
		return err
	}
	b.units = append(b.units, &unit{primary: h, members: []*member{b.track(h)}})
	return nil
}

// enrollFolder enrolls a directory tree. Content always travels with its
// sidecars, whatever the batch's grouping.
func (b *Batch) enrollFolder() error {
	reg := b.engine.reg
	dest := ""
	if b.kind == types.KindRenameFolder {
		dest = b.dest
	}

	en, err := b.engine.scanner.Enroll(reg, b.paths[0], b.kind, dest, b.engine.maxDepth)
	if err != nil {
		return err
	}
	b.dir = en

	root := &unit{primary: en.Root, members: []*member{b.track(en.Root)}}
	if b.kind == types.KindRenameFolder {
		for _, h := range en.Content {
			for _, m := range reg.Members(h) {
				root.followers = append(root.followers, b.track(m))
			}
		}
		b.units = []*unit{root}
		return nil
	}

	for _, h := range en.Content {
		u := &unit{primary: h}
		for _, m := range reg.Members(h) {
			u.members = append(u.members, b.track(m))
		}
		b.units = append(b.units, u)
	}
	b.units = append(b.units, root)
	return nil
}

func (b *Batch) intermediate() {
	dir, ok := b.engine.confirmer.ChooseDestination(b)
	if b.phase.Terminal() {
		return
	}
	if !ok || dir == "" {
		b.logger.Info().Msg("No destination chosen")
		b.finish(PhaseCancel, types.DiscardCancelled)
		return
	}

	canonical, err := filedata.Canonical(dir)
	if err != nil {
		b.fail(err)
		return
	}
	b.dest = canonical

	reg := b.engine.reg
	for _, u := range b.units {
		dest := filepath.Join(b.dest, filepath.Base(reg.Path(u.primary)))
		if len(u.members) > 1 {
			err = reg.SetGroupDest(u.primary, dest)
		} else {
			err = reg.SetDest(u.primary, dest)
		}
		if err != nil {
			b.fail(err)
			return
		}
	}
	b.setPhase(PhaseEntering)
}

func (b *Batch) entering() {
	confirmer := b.engine.confirmer
	report := b.engine.validator.Verify(b)
	b.report = report

	if report.Severity() == types.SeverityFatal {
		b.err = errors.Newf(errors.ErrValidationFatal, "%d file(s) cannot be processed", len(report.Fatal())).
			WithDetail("flags", report.Flags.String())
		b.logger.Warn().Str("flags", report.Flags.String()).Msg("Validation failed")

		decision := confirmer.ReportFatal(b, report)
		if b.phase.Terminal() {
			return
		}
		if decision == types.DecisionRevise && b.needsDestination() {
			b.revise()
			return
		}
		b.finish(PhaseCancel, types.DiscardCancelled)
		return
	}

	if b.engine.checkOnly {
		b.logger.Info().Str("flags", report.Flags.String()).Msg("Check only, stopping")
		b.finish(PhaseCancel, types.DiscardCancelled)
		return
	}

	if report.Severity() == types.SeverityWarning || b.engine.confirmClean[b.kind] {
		decision := confirmer.ConfirmWarnings(b, report)
		if b.phase.Terminal() {
			return
		}
		switch decision {
		case types.DecisionContinue:
		case types.DecisionDiscard:
			b.finish(PhaseDiscard, types.DiscardUser)
			return
		default:
			b.finish(PhaseCancel, types.DiscardCancelled)
			return
		}
	}

	b.setPhase(PhaseChecked)
}

// revise drops every enrollment and returns to START without a
// destination, so the next pass asks for one again
func (b *Batch) revise() {
	b.logger.Info().Msg("Revising destination")
	b.release()
	b.dest = ""
	b.err = nil
	b.setPhase(PhaseStart)
}

func (b *Batch) dispatch() {
	if b.editorKey != "" {
		b.runExternal()
		return
	}
	b.source = b.engine.loop.Idle(b.step)
}
