package editor

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/logging"
	"github.com/arthur-debert/photobatch/pkg/loop"
	"github.com/rs/zerolog"
)

// Request describes the files a descriptor runs on
type Request struct {
	Files []string
	// Dests holds the per-file destination used for %d in for-each mode
	Dests []string
	// Dest is substituted for %d in list mode
	Dest string
}

// Invocation is one run of the command
type Invocation struct {
	Index   int
	Files   []string
	Command string
	Dir     string

	// set once the invocation has finished
	Output  string
	Failure Failure
	Err     error
}

// Options contains configuration for the executor
type Options struct {
	// Loop runs the callback-driven mode. Required by Start.
	Loop   *loop.Loop
	Logger zerolog.Logger
	// Shell runs the rendered command line, default /bin/sh
	Shell string
	// Env is appended to the current environment
	Env []string
	// Stdout and Stderr receive the output of non-terminal commands
	// after it has been captured; nil discards it
	Stdout io.Writer
	Stderr io.Writer
}

// Executor launches external commands
type Executor struct {
	loop   *loop.Loop
	logger zerolog.Logger
	shell  string
	env    []string
	stdout io.Writer
	stderr io.Writer

	mu    sync.Mutex
	tasks map[string]*Task
}

// NewExecutor creates an executor
func NewExecutor(opts Options) *Executor {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("editor")
	}
	shell := opts.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	return &Executor{
		loop:   opts.Loop,
		logger: logger,
		shell:  shell,
		env:    opts.Env,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
		tasks:  make(map[string]*Task),
	}
}

// Prepare renders the invocations for req. Files the descriptor does not
// accept are returned as skipped.
func (e *Executor) Prepare(d *Descriptor, req Request) ([]*Invocation, Outcome) {
	out := Outcome{Flags: d.Flags()}

	tmpl, fail := d.Template()
	if fail != 0 {
		out.fail(fail, errors.Newf(errors.ErrEditorInvalid, "editor %s: %s", d.Key, fail))
		out.Skipped = append(out.Skipped, req.Files...)
		return nil, out
	}

	var files, dests []string
	for i, f := range req.Files {
		if !d.Accepts(f) {
			out.Skipped = append(out.Skipped, f)
			continue
		}
		files = append(files, f)
		if i < len(req.Dests) {
			dests = append(dests, req.Dests[i])
		} else {
			dests = append(dests, req.Dest)
		}
	}
	if len(req.Files) > 0 && len(files) == 0 {
		out.fail(FailNoFile, errors.Newf(errors.ErrEditorInvalid, "editor %s accepts none of the files", d.Key))
		return nil, out
	}
	if len(out.Skipped) > 0 {
		out.Failures |= FailSkipped
	}

	var invs []*Invocation
	if tmpl.Flags().Has(FlagForEach) {
		for i, f := range files {
			invs = append(invs, e.invocation(len(invs), tmpl, []string{f}, dests[i]))
		}
	} else {
		invs = append(invs, e.invocation(0, tmpl, files, req.Dest))
	}
	return invs, out
}

func (e *Executor) invocation(index int, tmpl *Template, files []string, dest string) *Invocation {
	inv := &Invocation{
		Index:   index,
		Files:   files,
		Command: tmpl.Render(files, dest),
	}
	if tmpl.Flags().Has(FlagWorkDir) {
		inv.Dir = workDir(files)
	}
	return inv
}

// run executes one invocation to completion
func (e *Executor) run(ctx context.Context, d *Descriptor, inv *Invocation) {
	logging.LogCommand(e.shell, []string{"-c", inv.Command})

	cmd := exec.CommandContext(ctx, e.shell, "-c", inv.Command)
	cmd.Dir = inv.Dir
	cmd.Env = append(os.Environ(), e.env...)
	cmd.Env = append(cmd.Env, fmt.Sprintf("PHOTOBATCH_EDITOR=%s", d.Key))

	var stdout, stderr bytes.Buffer
	if d.Terminal {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	inv.Output = stdout.String() + stderr.String()
	if e.stdout != nil && stdout.Len() > 0 {
		_, _ = e.stdout.Write(stdout.Bytes())
	}
	if e.stderr != nil && stderr.Len() > 0 {
		_, _ = e.stderr.Write(stderr.Bytes())
	}

	if err == nil {
		e.logger.Debug().Str("editor", d.Key).Int("invocation", inv.Index).Msg("Command succeeded")
		return
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		inv.Failure = FailStatus
	} else {
		inv.Failure = FailCantExec
	}
	inv.Err = errors.Wrapf(err, errors.ErrEditorFailed, "editor %s failed", d.Key).
		WithDetail("command", inv.Command).
		WithDetail("output", inv.Output)

	e.logger.Error().
		Err(err).
		Str("editor", d.Key).
		Str("command", inv.Command).
		Str("stderr", stderr.String()).
		Msg("Command failed")
}

func (o *Outcome) record(inv *Invocation) {
	if inv.Failure == 0 {
		o.Done = append(o.Done, inv.Files...)
		return
	}
	o.Failed = append(o.Failed, inv.Files...)
	o.fail(inv.Failure, inv.Err)
}

// RunBlocking runs every invocation in order and waits for each to exit.
// Every invocation is attempted even after a failure.
func (e *Executor) RunBlocking(ctx context.Context, d *Descriptor, req Request) Outcome {
	invs, out := e.Prepare(d, req)
	if out.Fatal() {
		return out
	}

	done := logging.LogOperationStart(e.logger, "editor "+d.Key)
	defer done()

	for i, inv := range invs {
		if err := ctx.Err(); err != nil {
			for _, rest := range invs[i:] {
				out.Skipped = append(out.Skipped, rest.Files...)
			}
			out.fail(FailSkipped, err)
			break
		}
		e.run(ctx, d, inv)
		out.record(inv)
	}
	return out
}

// Live returns the number of callback-driven tasks that have not finished
func (e *Executor) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

func (e *Executor) track(t *Task) {
	e.mu.Lock()
	e.tasks[t.id] = t
	e.mu.Unlock()
}

func (e *Executor) untrack(t *Task) {
	e.mu.Lock()
	delete(e.tasks, t.id)
	e.mu.Unlock()
}
