package filesystem

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseFS(t *testing.T, fs types.FS, root string) {
	t.Helper()

	testFile := filepath.Join(root, "test.jpg")
	testContent := []byte("hello world")

	require.NoError(t, fs.WriteFile(testFile, testContent, 0644))

	info, err := fs.Stat(testFile)
	require.NoError(t, err)
	assert.Equal(t, "test.jpg", info.Name())
	assert.Equal(t, int64(len(testContent)), info.Size())

	content, err := fs.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, testContent, content)

	assert.True(t, fs.Access(testFile, 4))
	assert.True(t, fs.Access(testFile, 2))

	subDir := filepath.Join(root, "sub", "dir")
	require.NoError(t, fs.MkdirAll(subDir, 0755))
	require.NoError(t, fs.Mkdir(filepath.Join(root, "other"), 0755))

	entries, err := fs.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	// removing a non-empty directory must fail like os.Remove
	assert.Error(t, fs.Remove(filepath.Join(root, "sub")))

	renamed := filepath.Join(root, "renamed.jpg")
	require.NoError(t, fs.Rename(testFile, renamed))
	_, err = fs.Stat(testFile)
	assert.True(t, os.IsNotExist(err))

	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, fs.Chtimes(renamed, mtime, mtime))
	require.NoError(t, fs.Chmod(renamed, 0600))
	info, err = fs.Lstat(renamed)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	f, err := fs.OpenFile(filepath.Join(root, "new.xmp"), os.O_CREATE|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, fs.Remove(renamed))
	_, err = fs.Stat(renamed)
	assert.True(t, os.IsNotExist(err))
}

func TestNewOS(t *testing.T) {
	fs := NewOS()
	assert.NotNil(t, fs)
	exerciseFS(t, fs, t.TempDir())
}

func TestNewMemory(t *testing.T) {
	fs := NewMemory()
	require.NoError(t, fs.MkdirAll("/root", 0755))
	exerciseFS(t, fs, "/root")
}

func TestOSSymlinks(t *testing.T) {
	fs := NewOS()
	dir := t.TempDir()
	target := filepath.Join(dir, "target.jpg")
	link := filepath.Join(dir, "link.jpg")
	require.NoError(t, fs.WriteFile(target, []byte("x"), 0644))
	require.NoError(t, fs.Symlink(target, link))

	got, err := fs.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, target, got)

	info, err := fs.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
}

func TestModeAllows(t *testing.T) {
	assert.True(t, modeAllows(0644, 4))
	assert.True(t, modeAllows(0644, 6))
	assert.False(t, modeAllows(0444, 2))
	assert.False(t, modeAllows(0000, 4))
}
