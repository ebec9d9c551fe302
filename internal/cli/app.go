package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/photobatch/pkg/config"
	"github.com/arthur-debert/photobatch/pkg/editor"
	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/executor"
	"github.com/arthur-debert/photobatch/pkg/fileops"
	"github.com/arthur-debert/photobatch/pkg/filedata"
	"github.com/arthur-debert/photobatch/pkg/filesystem"
	"github.com/arthur-debert/photobatch/pkg/logging"
	"github.com/arthur-debert/photobatch/pkg/loop"
	"github.com/arthur-debert/photobatch/pkg/metadata"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/arthur-debert/photobatch/pkg/ui/confirmations"
	"github.com/arthur-debert/photobatch/pkg/ui/report"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags
type globalOptions struct {
	verbosity  int
	configPath string
	yes        bool
	check      bool
	noSidecars bool
	format     string

	// fs and stdin replace the real filesystem and terminal in tests
	fs          types.FS
	interactive *bool
}

// outcome is what the completion callback reported
type outcome struct {
	called  bool
	success bool
	dest    string
}

// app wires the engine for one command invocation
type app struct {
	opts     *globalOptions
	cfg      *config.Config
	fs       types.FS
	reg      *filedata.Registry
	loop     *loop.Loop
	queue    *metadata.Queue
	writer   *metadata.Writer
	editors  *editor.Registry
	engine   *fileops.Engine
	renderer *report.Renderer
	out      io.Writer
	done     outcome
	logger   zerolog.Logger
}

func newApp(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	logger := logging.GetLogger("cli")

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return nil, err
	}

	fs := opts.fs
	if fs == nil {
		fs = filesystem.NewOS()
	}
	out := cmd.OutOrStdout()

	a := &app{
		opts:     opts,
		cfg:      cfg,
		fs:       fs,
		loop:     loop.New(),
		queue:    metadata.NewQueue(),
		editors:  editor.NewRegistry(),
		renderer: report.New(out, format),
		out:      out,
		logger:   logger,
	}
	a.reg = filedata.NewRegistry(filedata.Options{
		FS:                fs,
		SidecarExtensions: cfg.Sidecars.Extensions,
		PendingMetadata:   a.queue.Pending,
	})
	a.writer = metadata.NewWriter(fs, a.queue, cfg.SidecarStyle())

	if err := a.editors.LoadDir(fs, cfg.EditorsDir()); err != nil {
		return nil, err
	}
	for _, d := range cfg.Descriptors() {
		if err := a.editors.Register(d); err != nil {
			return nil, err
		}
	}

	engine, err := fileops.New(fileops.Options{
		Registry:  a.reg,
		Loop:      a.loop,
		Executor:  executor.New(executor.Options{Registry: a.reg, Metadata: a.writer}),
		Editors:   a.editors,
		Confirmer: a.confirmer(out, format),
		EditorExecutor: editor.NewExecutor(editor.Options{
			Loop:   a.loop,
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		}),
		Metadata:     a.queue,
		MaxScanDepth: cfg.Engine.MaxScanDepth,
		WithSidecars: cfg.Engine.WithSidecars && !opts.noSidecars,
		External:     cfg.ExternalKinds(),
		ConfirmClean: cfg.ConfirmClean(),
		CheckOnly:    opts.check,
	})
	if err != nil {
		return nil, err
	}
	a.engine = engine

	logger.Debug().
		Int("max_scan_depth", cfg.Engine.MaxScanDepth).
		Bool("with_sidecars", cfg.Engine.WithSidecars && !opts.noSidecars).
		Int("editors", len(a.editors.List())).
		Msg("Engine ready")
	return a, nil
}

func (a *app) confirmer(out io.Writer, format report.Format) fileops.Confirmer {
	switch {
	case a.opts.check || a.opts.yes:
		return fileops.Unattended{}
	case a.interactive():
		return confirmations.NewConsole(nil, out, format)
	default:
		return confirmations.NewRefuse()
	}
}

func (a *app) interactive() bool {
	if a.opts.interactive != nil {
		return *a.opts.interactive
	}
	return report.IsTerminal(os.Stdin)
}

// batchOptions returns the options every batch of this invocation gets
func (a *app) batchOptions(extra ...fileops.BatchOption) []fileops.BatchOption {
	opts := []fileops.BatchOption{
		fileops.WithCallback(func(success bool, dest string, _ any) {
			a.done = outcome{called: true, success: success, dest: dest}
		}, nil),
	}
	return append(opts, extra...)
}

// run drives a scheduled batch to its end and reports the outcome. An
// interrupt cancels the batch.
func (a *app) run(ctx context.Context, b *fileops.Batch, err error) error {
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-ctx.Done():
			a.logger.Info().Msg("Interrupted, cancelling batch")
			b.CancelAsync()
		case <-finished:
		}
	}()

	a.loop.RunUntilIdle()

	if a.opts.check {
		return a.check(b)
	}

	phase := b.Phase()
	if err := a.renderer.Summary(report.Summary{
		Kind:    b.Kind(),
		Phase:   phase.String(),
		Success: a.done.success,
		Dest:    a.done.dest,
		Results: b.Results(),
		Err:     b.Err(),
	}); err != nil {
		a.logger.Warn().Err(err).Msg("Cannot render summary")
	}

	if phase == fileops.PhaseDone && b.Err() == nil {
		return nil
	}
	if b.Err() != nil {
		return b.Err()
	}
	return errors.Newf(errors.ErrBatchState, MsgErrBatchEnded, phase)
}

// check prints the validation report of a batch run with --check
func (a *app) check(b *fileops.Batch) error {
	if b.Report().Entries == nil && b.Err() != nil {
		// enrollment failed before validation
		return b.Err()
	}
	if err := a.renderer.Validation(b.Kind(), b.Report()); err != nil {
		return err
	}
	if b.Report().Severity() == types.SeverityFatal {
		return b.Err()
	}
	return nil
}
