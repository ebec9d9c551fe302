package executor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	pberrors "github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/executor"
	"github.com/arthur-debert/photobatch/pkg/filedata"
	"github.com/arthur-debert/photobatch/pkg/filesystem"
	"github.com/arthur-debert/photobatch/pkg/testutil"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFlusher implements executor.MetadataFlusher for testing
type MockFlusher struct {
	mock.Mock
}

func (m *MockFlusher) Flush(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func enroll(t *testing.T, reg *filedata.Registry, path string, kind types.Kind, dest string) filedata.Handle {
	t.Helper()
	h, err := reg.Get(path)
	require.NoError(t, err)
	require.NoError(t, reg.NewChange(h, kind, dest))
	return h
}

func newMemory(t *testing.T, tree testutil.FileTree) (*executor.Executor, *filedata.Registry, types.FS) {
	t.Helper()
	fs := filesystem.NewMemory()
	testutil.WriteTree(t, fs, "/pics", tree)
	reg := filedata.NewRegistry(filedata.Options{FS: fs})
	return executor.New(executor.Options{Registry: reg}), reg, fs
}

func TestPerformOne(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		kind   types.Kind
		dest   string
		verify func(t *testing.T, fs types.FS)
	}{
		{
			name: "rename",
			path: "/pics/photo.jpg", kind: types.KindRename, dest: "/pics/photo2.jpg",
			verify: func(t *testing.T, fs types.FS) {
				testutil.AssertNoFile(t, fs, "/pics/photo.jpg")
				testutil.AssertFileContent(t, fs, "/pics/photo2.jpg", "P")
			},
		},
		{
			name: "move overwrites",
			path: "/pics/photo.jpg", kind: types.KindMove, dest: "/pics/D/photo.jpg",
			verify: func(t *testing.T, fs types.FS) {
				testutil.AssertNoFile(t, fs, "/pics/photo.jpg")
				testutil.AssertFileContent(t, fs, "/pics/D/photo.jpg", "P")
			},
		},
		{
			name: "copy",
			path: "/pics/photo.jpg", kind: types.KindCopy, dest: "/pics/D/copy.jpg",
			verify: func(t *testing.T, fs types.FS) {
				testutil.AssertFileContent(t, fs, "/pics/photo.jpg", "P")
				testutil.AssertFileContent(t, fs, "/pics/D/copy.jpg", "P")
				entries, err := fs.ReadDir("/pics/D")
				require.NoError(t, err)
				assert.Len(t, entries, 2, "no temporary file left behind")
			},
		},
		{
			name: "delete",
			path: "/pics/photo.jpg", kind: types.KindDelete,
			verify: func(t *testing.T, fs types.FS) {
				testutil.AssertNoFile(t, fs, "/pics/photo.jpg")
			},
		},
		{
			name: "delete empty folder",
			path: "/pics/Empty", kind: types.KindDeleteFolder,
			verify: func(t *testing.T, fs types.FS) {
				testutil.AssertNoFile(t, fs, "/pics/Empty")
			},
		},
		{
			name: "create folder",
			path: "/pics/New", kind: types.KindCreateFolder, dest: "/pics/New",
			verify: func(t *testing.T, fs types.FS) {
				info, err := fs.Stat("/pics/New")
				require.NoError(t, err)
				assert.True(t, info.IsDir())
			},
		},
		{
			name: "rename folder",
			path: "/pics/D", kind: types.KindRenameFolder, dest: "/pics/E",
			verify: func(t *testing.T, fs types.FS) {
				testutil.AssertNoFile(t, fs, "/pics/D")
				testutil.AssertFileContent(t, fs, "/pics/E/photo.jpg", "OLD")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, reg, fs := newMemory(t, testutil.FileTree{
				"photo.jpg": "P",
				"D":         testutil.FileTree{"photo.jpg": "OLD"},
				"Empty":     testutil.FileTree{},
			})
			h := enroll(t, reg, tt.path, tt.kind, tt.dest)

			result := exec.PerformOne(context.Background(), h)
			require.NoError(t, result.Error)
			assert.True(t, result.Success)
			assert.Equal(t, tt.kind, result.Kind)
			assert.Equal(t, h, result.Handle)
			tt.verify(t, fs)

			// the executor never commits identity changes itself
			assert.Equal(t, tt.path, reg.Path(h))
		})
	}
}

func TestPerformOneCopyKeepsAttributes(t *testing.T) {
	exec, reg, fs := newMemory(t, testutil.FileTree{"photo.jpg": "P"})
	mtime := time.Date(2019, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, fs.Chmod("/pics/photo.jpg", 0640))
	require.NoError(t, fs.Chtimes("/pics/photo.jpg", mtime, mtime))

	h := enroll(t, reg, "/pics/photo.jpg", types.KindCopy, "/pics/copy.jpg")
	require.True(t, exec.PerformOne(context.Background(), h).Success)

	info, err := fs.Stat("/pics/copy.jpg")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime))
}

func TestPerformOneFailure(t *testing.T) {
	mem := filesystem.NewMemory()
	testutil.WriteTree(t, mem, "/pics", testutil.FileTree{"photo.jpg": "P"})
	fs := testutil.NewFaultFS(mem).WithError(testutil.OpRename, "/pics/photo.jpg", syscall.ENOSPC)
	reg := filedata.NewRegistry(filedata.Options{FS: fs})
	exec := executor.New(executor.Options{Registry: reg})

	h := enroll(t, reg, "/pics/photo.jpg", types.KindRename, "/pics/photo2.jpg")
	result := exec.PerformOne(context.Background(), h)

	assert.False(t, result.Success)
	require.Error(t, result.Error)
	assert.True(t, pberrors.IsErrorCode(result.Error, pberrors.ErrPerform))
	assert.True(t, errors.Is(result.Error, syscall.ENOSPC))
	testutil.AssertFileContent(t, fs, "/pics/photo.jpg", "P")
}

func TestPerformOneCrossDeviceMove(t *testing.T) {
	mem := filesystem.NewMemory()
	testutil.WriteTree(t, mem, "/pics", testutil.FileTree{"photo.jpg": "P", "D": testutil.FileTree{}})
	fs := testutil.NewFaultFS(mem).WithError(testutil.OpRename, "/pics/photo.jpg", syscall.EXDEV)
	reg := filedata.NewRegistry(filedata.Options{FS: fs})
	exec := executor.New(executor.Options{Registry: reg})

	h := enroll(t, reg, "/pics/photo.jpg", types.KindMove, "/pics/D/photo.jpg")
	result := exec.PerformOne(context.Background(), h)

	require.NoError(t, result.Error)
	testutil.AssertNoFile(t, fs, "/pics/photo.jpg")
	testutil.AssertFileContent(t, fs, "/pics/D/photo.jpg", "P")
}

func TestPerformOneWriteMetadata(t *testing.T) {
	fs := filesystem.NewMemory()
	testutil.WriteTree(t, fs, "/pics", testutil.FileTree{"photo.jpg": "P"})
	reg := filedata.NewRegistry(filedata.Options{FS: fs})
	flusher := &MockFlusher{}
	flusher.On("Flush", "/pics/photo.jpg").Return(nil).Once()
	exec := executor.New(executor.Options{Registry: reg, Metadata: flusher})

	h := enroll(t, reg, "/pics/photo.jpg", types.KindWriteMetadata, "")
	assert.True(t, exec.PerformOne(context.Background(), h).Success)
	flusher.AssertExpectations(t)
}

func TestPerformOneRejects(t *testing.T) {
	exec, reg, _ := newMemory(t, testutil.FileTree{"photo.jpg": "P", "other.jpg": "O"})

	h := enroll(t, reg, "/pics/photo.jpg", types.KindRunExternalFilter, "/pics/out.jpg")
	result := exec.PerformOne(context.Background(), h)
	assert.False(t, result.Success)

	notEnrolled, err := reg.Get("/pics/other.jpg")
	require.NoError(t, err)
	result = exec.PerformOne(context.Background(), notEnrolled)
	assert.True(t, pberrors.IsErrorCode(result.Error, pberrors.ErrNotEnrolled))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reg.FreeChange(h)
	h = enroll(t, reg, "/pics/photo.jpg", types.KindDelete, "")
	result = exec.PerformOne(ctx, h)
	assert.ErrorIs(t, result.Error, context.Canceled)
}

func TestPerformOneOnDisk(t *testing.T) {
	root := t.TempDir()
	fs := filesystem.NewOS()
	testutil.WriteTree(t, fs, root, testutil.FileTree{"photo.jpg": "P"})
	reg := filedata.NewRegistry(filedata.Options{FS: fs})
	exec := executor.New(executor.Options{Registry: reg})

	src := filepath.Join(root, "photo.jpg")
	dst := filepath.Join(root, "copy.jpg")
	h := enroll(t, reg, src, types.KindCopy, dst)
	result := exec.PerformOne(context.Background(), h)
	require.NoError(t, result.Error)
	testutil.AssertFileContent(t, fs, dst, "P")

	dir := filepath.Join(root, "Album")
	h = enroll(t, reg, dir, types.KindCreateFolder, dir)
	require.NoError(t, exec.PerformOne(context.Background(), h).Error)
	info, err := fs.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
