package fileops

import (
	"context"

	"github.com/arthur-debert/photobatch/pkg/editor"
	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/executor"
	"github.com/arthur-debert/photobatch/pkg/filedata"
	"github.com/arthur-debert/photobatch/pkg/logging"
	"github.com/arthur-debert/photobatch/pkg/loop"
	"github.com/arthur-debert/photobatch/pkg/scanner"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/arthur-debert/photobatch/pkg/validator"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MetadataHooks provides the default hooks of write-metadata batches
type MetadataHooks interface {
	FinalizeHook(path string)
	DiscardHook(path string, cause types.DiscardCause)
}

// Options contains configuration for the engine
type Options struct {
	Registry *filedata.Registry
	Loop     *loop.Loop

	// Executor, Validator and Scanner default to instances built on
	// Registry
	Executor  *executor.Executor
	Validator *validator.Validator
	Scanner   *scanner.Scanner

	// Editors and EditorExecutor are required for external commands
	Editors        *editor.Registry
	EditorExecutor *editor.Executor

	// Confirmer defaults to Unattended
	Confirmer Confirmer

	// Metadata supplies the hooks of write-metadata batches that do not
	// set their own
	Metadata MetadataHooks

	// MaxScanDepth caps directory recursion, default scanner.DefaultMaxDepth
	MaxScanDepth int
	// WithSidecars is the default grouping of new batches
	WithSidecars bool
	// External maps a kind to the editor key that performs it instead of
	// the internal executor
	External map[types.Kind]string
	// ConfirmClean lists kinds that ask for confirmation even when
	// validation found nothing
	ConfirmClean map[types.Kind]bool
	// CheckOnly stops every batch once it has been validated
	CheckOnly bool

	Logger zerolog.Logger
}

// Engine creates and drives batches
type Engine struct {
	reg       *filedata.Registry
	loop      *loop.Loop
	exec      *executor.Executor
	validator *validator.Validator
	scanner   *scanner.Scanner
	editors   *editor.Registry
	editorEx  *editor.Executor
	confirmer Confirmer
	metadata  MetadataHooks

	maxDepth     int
	withSidecars bool
	external     map[types.Kind]string
	confirmClean map[types.Kind]bool
	checkOnly    bool

	logger zerolog.Logger
}

// New creates an engine. Registry and Loop are required.
func New(opts Options) (*Engine, error) {
	if opts.Registry == nil {
		return nil, errors.New(errors.ErrInvalidInput, "engine needs a file registry")
	}
	if opts.Loop == nil {
		return nil, errors.New(errors.ErrInvalidInput, "engine needs a loop")
	}

	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("fileops")
	}

	e := &Engine{
		reg:          opts.Registry,
		loop:         opts.Loop,
		exec:         opts.Executor,
		validator:    opts.Validator,
		scanner:      opts.Scanner,
		editors:      opts.Editors,
		editorEx:     opts.EditorExecutor,
		confirmer:    opts.Confirmer,
		metadata:     opts.Metadata,
		maxDepth:     opts.MaxScanDepth,
		withSidecars: opts.WithSidecars,
		external:     opts.External,
		confirmClean: opts.ConfirmClean,
		checkOnly:    opts.CheckOnly,
		logger:       logger,
	}
	if e.exec == nil {
		e.exec = executor.New(executor.Options{Registry: e.reg})
	}
	if e.validator == nil {
		e.validator = validator.New(e.reg, validator.Options{})
	}
	if e.scanner == nil {
		e.scanner = scanner.New(e.reg.FS())
	}
	if e.confirmer == nil {
		e.confirmer = Unattended{}
	}
	if e.maxDepth <= 0 {
		e.maxDepth = scanner.DefaultMaxDepth
	}
	return e, nil
}

// Registry returns the file registry the engine enrolls into
func (e *Engine) Registry() *filedata.Registry { return e.reg }

// Loop returns the loop batches run on
func (e *Engine) Loop() *loop.Loop { return e.loop }

// BatchOption configures a batch before it starts
type BatchOption func(*Batch)

// WithCallback sets the completion callback and its opaque data
func WithCallback(fn func(success bool, dest string, data any), data any) BatchOption {
	return func(b *Batch) {
		b.done = fn
		b.data = data
	}
}

// WithFinalizeHook sets the hook run for every file of a successful batch
func WithFinalizeHook(fn func(path string)) BatchOption {
	return func(b *Batch) { b.finalizeHook = fn }
}

// WithDiscardHook sets the hook run for every file of a discarded batch
func WithDiscardHook(fn func(path string, cause types.DiscardCause)) BatchOption {
	return func(b *Batch) { b.discardHook = fn }
}

// WithFileFailedHook sets the hook receiving every per-file failure
func WithFileFailedHook(fn func(executor.Result)) BatchOption {
	return func(b *Batch) { b.onFileFailed = fn }
}

// WithSidecars overrides the engine's default grouping
func WithSidecars(on bool) BatchOption {
	return func(b *Batch) { b.withSidecars = on }
}

// WithEditor performs the batch through the given external command
func WithEditor(key string) BatchOption {
	return func(b *Batch) { b.editorKey = key }
}

// WithContext bounds the batch's external commands
func WithContext(ctx context.Context) BatchOption {
	return func(b *Batch) { b.parent = ctx }
}

func (e *Engine) newBatch(kind types.Kind, paths []string, opts []BatchOption) *Batch {
	b := &Batch{
		id:           uuid.NewString(),
		kind:         kind,
		engine:       e,
		paths:        append([]string(nil), paths...),
		withSidecars: e.withSidecars,
		editorKey:    e.external[kind],
		parent:       context.Background(),
		state:        make(map[filedata.Handle]*member),
	}
	for _, opt := range opts {
		opt(b)
	}
	if kind == types.KindWriteMetadata && e.metadata != nil {
		if b.finalizeHook == nil {
			b.finalizeHook = e.metadata.FinalizeHook
		}
		if b.discardHook == nil {
			b.discardHook = e.metadata.DiscardHook
		}
	}
	b.ctx, b.cancelCtx = context.WithCancel(b.parent)
	b.logger = e.logger.With().
		Str("batch", b.id).
		Str("kind", kind.String()).
		Logger()
	return b
}

// submit checks the batch's request and schedules it on the loop
func (e *Engine) submit(b *Batch) (*Batch, error) {
	if len(b.paths) == 0 {
		return nil, errors.Newf(errors.ErrInvalidInput, "%s needs at least one file", b.kind)
	}
	for _, p := range b.paths {
		if p == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "%s got an empty path", b.kind)
		}
	}
	if b.editorKey != "" {
		if e.editors == nil || e.editorEx == nil {
			return nil, errors.Newf(errors.ErrEditorNotFound, "no external commands configured for %s", b.kind)
		}
		if _, err := e.editors.Lookup(b.editorKey); err != nil {
			return nil, err
		}
	}

	b.logger.Info().Int("files", len(b.paths)).Str("dest", b.dest).Msg("Batch created")
	e.loop.Post(b.advance)
	return b, nil
}

// Copy copies paths into destDir. An empty destDir is asked for.
func (e *Engine) Copy(paths []string, destDir string, opts ...BatchOption) (*Batch, error) {
	b := e.newBatch(types.KindCopy, paths, opts)
	b.dest = destDir
	return e.submit(b)
}

// Move moves paths into destDir. An empty destDir is asked for.
func (e *Engine) Move(paths []string, destDir string, opts ...BatchOption) (*Batch, error) {
	b := e.newBatch(types.KindMove, paths, opts)
	b.dest = destDir
	return e.submit(b)
}

// Rename gives every path the new full path at the same index of dests
func (e *Engine) Rename(paths, dests []string, opts ...BatchOption) (*Batch, error) {
	if len(paths) != len(dests) {
		return nil, errors.Newf(errors.ErrInvalidInput, "rename got %d files and %d new names", len(paths), len(dests))
	}
	for _, d := range dests {
		if d == "" {
			return nil, errors.New(errors.ErrInvalidInput, "rename got an empty new name")
		}
	}
	b := e.newBatch(types.KindRename, paths, opts)
	b.dests = append([]string(nil), dests...)
	return e.submit(b)
}

// Delete removes paths. Symbolic links are removed as links.
func (e *Engine) Delete(paths []string, opts ...BatchOption) (*Batch, error) {
	return e.submit(e.newBatch(types.KindDelete, paths, opts))
}

// DeleteFolder removes dir and everything below it
func (e *Engine) DeleteFolder(dir string, opts ...BatchOption) (*Batch, error) {
	b := e.newBatch(types.KindDeleteFolder, []string{dir}, opts)
	b.editorKey = ""
	return e.submit(b)
}

// CreateFolder creates the directory path
func (e *Engine) CreateFolder(path string, opts ...BatchOption) (*Batch, error) {
	b := e.newBatch(types.KindCreateFolder, []string{path}, opts)
	b.dest = path
	b.editorKey = ""
	return e.submit(b)
}

// RenameFolder renames dir to newPath, taking its content along
func (e *Engine) RenameFolder(dir, newPath string, opts ...BatchOption) (*Batch, error) {
	if newPath == "" {
		return nil, errors.New(errors.ErrInvalidInput, "rename folder needs a new path")
	}
	b := e.newBatch(types.KindRenameFolder, []string{dir}, opts)
	b.dest = newPath
	b.editorKey = ""
	return e.submit(b)
}

// WriteMetadata flushes the queued metadata of paths
func (e *Engine) WriteMetadata(paths []string, opts ...BatchOption) (*Batch, error) {
	b := e.newBatch(types.KindWriteMetadata, paths, opts)
	b.withSidecars = false
	return e.submit(b)
}

// RunFilter runs the external filter key over paths, writing results into
// destDir. An empty destDir is asked for.
func (e *Engine) RunFilter(key string, paths []string, destDir string, opts ...BatchOption) (*Batch, error) {
	if key == "" {
		return nil, errors.New(errors.ErrInvalidInput, "filter needs an external command")
	}
	b := e.newBatch(types.KindRunExternalFilter, paths, opts)
	b.dest = destDir
	b.editorKey = key
	b.withSidecars = false
	return e.submit(b)
}
