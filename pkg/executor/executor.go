package executor

import (
	"context"
	"time"

	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/filedata"
	"github.com/arthur-debert/photobatch/pkg/filesystem"
	"github.com/arthur-debert/photobatch/pkg/logging"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/rs/zerolog"
)

// MetadataFlusher writes the pending metadata edits of a file to disk
type MetadataFlusher interface {
	Flush(path string) error
}

// Options contains configuration for the executor
type Options struct {
	Registry *filedata.Registry
	Metadata MetadataFlusher
	Logger   zerolog.Logger
	// Filesystem operations interface for testing. Defaults to the
	// registry's filesystem.
	FS types.FS
}

// Result describes the outcome of one performed change
type Result struct {
	Handle   filedata.Handle
	Kind     types.Kind
	Source   string
	Dest     string
	Success  bool
	Error    error
	Duration time.Duration
}

// Executor performs changes one file at a time
type Executor struct {
	reg      *filedata.Registry
	fs       types.FS
	metadata MetadataFlusher
	copier   copier
	logger   zerolog.Logger
}

// New creates a new executor instance
func New(opts Options) *Executor {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("executor")
	}

	fs := opts.FS
	if fs == nil && opts.Registry != nil {
		fs = opts.Registry.FS()
	}
	if fs == nil {
		fs = filesystem.NewOS()
	}

	return &Executor{
		reg:      opts.Registry,
		fs:       fs,
		metadata: opts.Metadata,
		copier:   newCopier(fs),
		logger:   logger,
	}
}

// PerformOne applies the change enrolled on h
func (e *Executor) PerformOne(ctx context.Context, h filedata.Handle) Result {
	start := time.Now()
	result := Result{Handle: h}

	change := e.reg.Change(h)
	if change == nil {
		result.Error = errors.Newf(errors.ErrNotEnrolled, "%s has no pending change", h)
		return result
	}
	result.Kind = change.Kind
	result.Source = change.Source
	result.Dest = change.Dest

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	logger := e.logger.With().
		Str("kind", change.Kind.String()).
		Str("source", change.Source).
		Str("dest", change.Dest).
		Logger()
	logger.Debug().Msg("Performing change")

	err := e.perform(ctx, change)
	result.Duration = time.Since(start)
	if err != nil {
		logger.Error().Err(err).Msg("Change failed")
		result.Error = errors.Wrapf(err, errors.ErrPerform, "%s %s", change.Kind, change.Source)
		return result
	}

	logger.Info().Dur("duration", result.Duration).Msg("Change performed")
	result.Success = true
	return result
}

func (e *Executor) perform(ctx context.Context, c *types.ChangeInfo) error {
	switch c.Kind {
	case types.KindCopy:
		if c.Dest == c.Source {
			return nil
		}
		return e.copier.Copy(ctx, c.Source, c.Dest)
	case types.KindMove, types.KindRename:
		return e.move(ctx, c.Source, c.Dest)
	case types.KindRenameFolder:
		if c.Source == c.Dest {
			return nil
		}
		return e.fs.Rename(c.Source, c.Dest)
	case types.KindDelete, types.KindDeleteLink, types.KindDeleteFolder:
		return e.fs.Remove(c.Source)
	case types.KindCreateFolder:
		return e.copier.Mkdir(ctx, c.Dest, 0755)
	case types.KindWriteMetadata:
		if e.metadata == nil {
			return errors.New(errors.ErrInternal, "no metadata writer configured")
		}
		return e.metadata.Flush(c.Source)
	case types.KindRunExternalFilter:
		return errors.New(errors.ErrInvalidInput, "filters run through an external command")
	default:
		return errors.Newf(errors.ErrInvalidInput, "unknown change kind %q", c.Kind)
	}
}

// Revert undoes a performed move or rename of h, putting the file back at
// its source. Other kinds cannot be undone.
func (e *Executor) Revert(ctx context.Context, h filedata.Handle) Result {
	start := time.Now()
	result := Result{Handle: h}

	change := e.reg.Change(h)
	if change == nil {
		result.Error = errors.Newf(errors.ErrNotEnrolled, "%s has no pending change", h)
		return result
	}
	result.Kind = change.Kind
	result.Source = change.Dest
	result.Dest = change.Source

	switch change.Kind {
	case types.KindMove, types.KindRename:
	default:
		result.Error = errors.Newf(errors.ErrInvalidInput, "cannot revert %s", change.Kind)
		return result
	}

	err := e.move(ctx, change.Dest, change.Source)
	result.Duration = time.Since(start)
	if err != nil {
		e.logger.Error().Err(err).
			Str("source", change.Source).
			Str("dest", change.Dest).
			Msg("Revert failed")
		result.Error = errors.Wrapf(err, errors.ErrPerform, "revert %s %s", change.Kind, change.Source)
		return result
	}

	e.logger.Info().
		Str("source", change.Source).
		Str("dest", change.Dest).
		Msg("Change reverted")
	result.Success = true
	return result
}

// move renames src to dst, copying and unlinking when they live on
// different devices
func (e *Executor) move(ctx context.Context, src, dst string) error {
	if src == dst {
		return nil
	}

	err := e.fs.Rename(src, dst)
	if err == nil || !filesystem.IsCrossDevice(err) {
		return err
	}

	e.logger.Debug().Str("source", src).Str("dest", dst).Msg("Cross-device move, copying")
	if err := e.copier.Copy(ctx, src, dst); err != nil {
		return err
	}
	if err := e.fs.Remove(src); err != nil {
		// the copy succeeded; undo it so the source stays the only version
		_ = e.fs.Remove(dst)
		return err
	}
	return nil
}
