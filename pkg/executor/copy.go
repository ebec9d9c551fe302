package executor

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/photobatch/pkg/filesystem"
	"github.com/arthur-debert/photobatch/pkg/logging"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/arthur-debert/synthfs/pkg/synthfs"
	synthfsfs "github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/google/uuid"
)

// copier produces new files and directories. The OS filesystem goes
// through a synthfs pipeline; any other types.FS is streamed directly.
type copier interface {
	Copy(ctx context.Context, src, dst string) error
	Mkdir(ctx context.Context, path string, mode fs.FileMode) error
}

func newCopier(fsys types.FS) copier {
	if filesystem.IsOS(fsys) {
		osfs := synthfsfs.NewOSFileSystem("/")
		return &synthfsCopier{
			fs:      fsys,
			sfsRoot: synthfs.NewPathAwareFileSystem(osfs, "/").WithAbsolutePaths(),
		}
	}
	return &streamCopier{fs: fsys}
}

// tempName returns a hidden sibling of dst used while a copy is in flight
func tempName(dst string) string {
	return filepath.Join(filepath.Dir(dst),
		fmt.Sprintf(".%s.photobatch-%s", filepath.Base(dst), uuid.NewString()[:8]))
}

// finishCopy gives tmp the attributes of src and moves it over dst
func finishCopy(fsys types.FS, src, tmp, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return err
	}
	if err := fsys.Chmod(tmp, info.Mode().Perm()); err != nil {
		return err
	}
	if err := fsys.Chtimes(tmp, time.Now(), info.ModTime()); err != nil {
		return err
	}
	return fsys.Rename(tmp, dst)
}

type synthfsCopier struct {
	fs      types.FS
	sfsRoot synthfsfs.FullFileSystem
}

func (c *synthfsCopier) Copy(ctx context.Context, src, dst string) error {
	tmp := tempName(dst)
	sfs := synthfs.New()
	id := fmt.Sprintf("copy_%s_%d", filepath.Base(dst), time.Now().UnixNano())

	ops := []synthfs.Operation{
		sfs.CopyWithID(id, src, tmp),
		sfs.CustomOperationWithID(id+"_finish", func(ctx context.Context, _ synthfsfs.FileSystem) error {
			return finishCopy(c.fs, src, tmp, dst)
		}),
	}

	options := synthfs.DefaultPipelineOptions()
	options.RollbackOnError = true

	logger := logging.GetLogger("executor.synthfs")
	logger.Debug().Str("source", src).Str("dest", dst).Msg("Running synthfs copy")

	if _, err := synthfs.RunWithOptions(ctx, c.sfsRoot, options, ops...); err != nil {
		_ = c.fs.Remove(tmp)
		return err
	}
	return nil
}

func (c *synthfsCopier) Mkdir(ctx context.Context, path string, mode fs.FileMode) error {
	sfs := synthfs.New()
	id := fmt.Sprintf("mkdir_%s_%d", filepath.Base(path), time.Now().UnixNano())

	options := synthfs.DefaultPipelineOptions()
	_, err := synthfs.RunWithOptions(ctx, c.sfsRoot, options, sfs.CreateDirWithID(id, path, mode))
	return err
}

type streamCopier struct {
	fs types.FS
}

func (c *streamCopier) Copy(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := c.fs.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	tmp := tempName(dst)
	out, err := c.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = c.fs.Remove(tmp)
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		_ = c.fs.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = c.fs.Remove(tmp)
		return err
	}

	if err := finishCopy(c.fs, src, tmp, dst); err != nil {
		_ = c.fs.Remove(tmp)
		return err
	}
	return nil
}

func (c *streamCopier) Mkdir(ctx context.Context, path string, mode fs.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.fs.Mkdir(path, mode)
}
