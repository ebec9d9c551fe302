package testutil

import (
	"errors"
	"os"
	"testing"

	"github.com/arthur-debert/photobatch/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTreeAndSnapshot(t *testing.T) {
	fs := filesystem.NewMemory()
	WriteTree(t, fs, "/pics", FileTree{
		"a.jpg": "A",
		"sub": FileTree{
			"b.nef":     "B",
			"b.nef.xmp": "<x/>",
		},
	})

	snap := TakeSnapshot(t, fs, "/pics")
	assert.Equal(t, Snapshot{
		"a.jpg":         "A",
		"sub":           "<dir>",
		"sub/b.nef":     "B",
		"sub/b.nef.xmp": "<x/>",
	}, snap)
	assert.Equal(t, []string{"a.jpg", "sub", "sub/b.nef", "sub/b.nef.xmp"}, snap.Paths())
}

func TestSnapshotSymlink(t *testing.T) {
	root := t.TempDir()
	fs := filesystem.NewOS()
	WriteTree(t, fs, root, FileTree{
		"target.jpg": "T",
		"link.jpg":   Link("target.jpg"),
	})

	snap := TakeSnapshot(t, fs, root)
	assert.Equal(t, "-> target.jpg", snap["link.jpg"])
}

func TestFaultFS(t *testing.T) {
	boom := errors.New("boom")
	fs := NewFaultFS(filesystem.NewMemory())
	CreateFile(t, fs, "/d/a.jpg", "A")
	CreateFile(t, fs, "/d/b.jpg", "B")

	fs.WithError(OpRename, "/d/a.jpg", boom)

	err := fs.Rename("/d/a.jpg", "/d/c.jpg")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	var pathErr *os.PathError
	assert.True(t, errors.As(err, &pathErr))

	require.NoError(t, fs.Rename("/d/b.jpg", "/d/c.jpg"))
	assert.Equal(t, 2, fs.Calls(OpRename))
	AssertFileContent(t, fs, "/d/c.jpg", "B")
	AssertNoFile(t, fs, "/d/b.jpg")
}
