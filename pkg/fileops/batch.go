package fileops

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/photobatch/pkg/editor"
	"github.com/arthur-debert/photobatch/pkg/executor"
	"github.com/arthur-debert/photobatch/pkg/filedata"
	"github.com/arthur-debert/photobatch/pkg/loop"
	"github.com/arthur-debert/photobatch/pkg/scanner"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/arthur-debert/photobatch/pkg/validator"
	"github.com/rs/zerolog"
)

type memberState int

const (
	statePending memberState = iota
	stateDone
	stateFailed
	stateSkipped
)

// member is one enrolled entry of a batch
type member struct {
	handle filedata.Handle
	source string
	state  memberState
}

// unit is a file group processed in one step: a primary and the sidecars
// enrolled with it. Followers are never performed themselves; they share
// the outcome of the unit (the content of a renamed folder).
type unit struct {
	primary   filedata.Handle
	members   []*member
	followers []*member
	failed    bool
	// failure is the first failed result of the unit
	failure executor.Result
}

func (u *unit) all() []*member {
	out := make([]*member, 0, len(u.followers)+len(u.members))
	out = append(out, u.followers...)
	return append(out, u.members...)
}

// Batch is one file operation request moving through its phases. A batch
// is only touched from the engine's loop goroutine.
type Batch struct {
	id     string
	kind   types.Kind
	phase  Phase
	engine *Engine

	paths        []string
	dest         string
	dests        []string
	withSidecars bool
	editorKey    string

	done         func(success bool, dest string, data any)
	data         any
	finalizeHook func(path string)
	discardHook  func(path string, cause types.DiscardCause)
	onFileFailed func(executor.Result)

	// refs holds the references taken at enrollment
	refs  []filedata.Handle
	dir   *scanner.Enrolled
	units []*unit
	state map[filedata.Handle]*member

	report  validator.Report
	results []executor.Result
	err     error

	cursor    int
	source    *loop.Source
	task      *editor.Task
	executed  bool
	aborting  bool

	parent    context.Context
	ctx       context.Context
	cancelCtx context.CancelFunc
	logger    zerolog.Logger
}

// ID returns the batch's unique identifier
func (b *Batch) ID() string { return b.id }

// Kind returns the operation the batch performs
func (b *Batch) Kind() types.Kind { return b.kind }

// Phase returns the current phase
func (b *Batch) Phase() Phase { return b.phase }

// Paths returns the paths the batch was created for
func (b *Batch) Paths() []string { return b.paths }

// Dest returns the destination: a directory for copy, move and filter
// batches, the new path for folder batches
func (b *Batch) Dest() string { return b.dest }

// EditorKey returns the external command performing the batch, or ""
func (b *Batch) EditorKey() string { return b.editorKey }

// Report returns the last validation report
func (b *Batch) Report() validator.Report { return b.report }

// Results returns the per-file results recorded so far
func (b *Batch) Results() []executor.Result { return b.results }

// Err returns the error that stopped the batch, if any
func (b *Batch) Err() error { return b.err }

// Handles returns every enrolled entry in processing order
func (b *Batch) Handles() []filedata.Handle {
	var out []filedata.Handle
	for _, u := range b.units {
		for _, m := range u.all() {
			out = append(out, m.handle)
		}
	}
	return out
}

// finalDest is the destination reported to the completion callback
func (b *Batch) finalDest() string {
	switch b.kind {
	case types.KindRename:
		if len(b.dests) == 1 {
			return b.dests[0]
		}
		if len(b.units) > 0 {
			if c := b.engine.reg.Change(b.units[0].primary); c != nil && c.Dest != "" {
				return filepath.Dir(c.Dest)
			}
		}
		return ""
	case types.KindDelete, types.KindDeleteLink, types.KindDeleteFolder, types.KindWriteMetadata:
		return ""
	default:
		return b.dest
	}
}

func (b *Batch) setPhase(p Phase) {
	if b.phase == p {
		return
	}
	b.logger.Debug().
		Str("from", b.phase.String()).
		Str("to", p.String()).
		Msg("Batch phase changed")
	b.phase = p
}

// record stores a per-file result and updates the member
func (b *Batch) record(u *unit, res executor.Result) {
	b.results = append(b.results, res)
	m := b.state[res.Handle]
	if m == nil {
		return
	}
	if res.Success {
		m.state = stateDone
		return
	}
	m.state = stateFailed
	if !u.failed {
		u.failure = res
	}
	u.failed = true
	if b.onFileFailed != nil {
		b.onFileFailed(res)
	}
}

func (b *Batch) succeeded() int {
	n := 0
	for _, u := range b.units {
		for _, m := range u.members {
			if m.state == stateDone {
				n++
			}
		}
	}
	return n
}

func (b *Batch) failedUnits() int {
	n := 0
	for _, u := range b.units {
		if u.failed {
			n++
		}
	}
	return n
}
