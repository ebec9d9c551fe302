package filedata

import (
	"testing"

	"github.com/arthur-debert/photobatch/pkg/filesystem"
	"github.com/arthur-debert/photobatch/pkg/testutil"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enroll(t *testing.T, reg *Registry, path string, kind types.Kind, dest string) Handle {
	t.Helper()
	h, err := reg.Get(path)
	require.NoError(t, err)
	require.NoError(t, reg.NewChange(h, kind, dest))
	return h
}

func TestVerifyFile(t *testing.T) {
	tree := testutil.FileTree{
		"a.jpg": "A",
		"b.jpg": "B",
		"sub":   testutil.FileTree{},
		"dir":   testutil.FileTree{"a.jpg": testutil.FileTree{}},
	}

	tests := []struct {
		name     string
		path     string
		kind     types.Kind
		dest     string
		expected types.Flags
	}{
		{"clean rename", "/pics/a.jpg", types.KindRename, "/pics/c.jpg", 0},
		{"clean move", "/pics/a.jpg", types.KindMove, "/pics/sub/a.jpg", 0},
		{"missing source", "/pics/none.jpg", types.KindCopy, "/pics/sub/none.jpg", types.ErrNoSource},
		{"dest exists", "/pics/a.jpg", types.KindCopy, "/pics/b.jpg", types.WarnDestExists},
		{"dest is dir", "/pics/a.jpg", types.KindMove, "/pics/dir/a.jpg", types.ErrDestIsDir},
		{"no dest dir", "/pics/a.jpg", types.KindMove, "/pics/nowhere/a.jpg", types.ErrNoDestDir},
		{"no dest", "/pics/a.jpg", types.KindCopy, "", types.ErrNoDest},
		{"same path", "/pics/a.jpg", types.KindRename, "/pics/a.jpg", types.WarnSame},
		{"changed extension", "/pics/a.jpg", types.KindRename, "/pics/a.png", types.WarnChangedExtension},
		{"no extension", "/pics/a.jpg", types.KindRename, "/pics/a", types.WarnNoExtension},
		{"extension case only", "/pics/a.jpg", types.KindRename, "/pics/c.JPG", 0},
		{"delete", "/pics/a.jpg", types.KindDelete, "", 0},
		{"delete folder content", "/pics/a.jpg", types.KindDeleteFolder, "", 0},
		{"copy directory", "/pics/sub", types.KindCopy, "/pics/dir/sub", types.ErrSourceIsDir},
		{"filter directory", "/pics/sub", types.KindRunExternalFilter, "/pics/dir/sub", types.ErrSourceIsDir},
		{"move directory", "/pics/sub", types.KindMove, "/pics/dir/sub", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _ := newTestRegistry(t, tree)
			h := enroll(t, reg, tt.path, tt.kind, tt.dest)

			flags := reg.Verify(h, reg.CountDests([]Handle{h}))
			assert.Equal(t, tt.expected, flags, flags.String())
			assert.Equal(t, tt.expected, reg.Change(h).Flags)
		})
	}
}

func TestVerifyFolders(t *testing.T) {
	tree := testutil.FileTree{
		"existing": testutil.FileTree{},
		"album":    testutil.FileTree{"a.jpg": "A"},
	}

	tests := []struct {
		name     string
		path     string
		kind     types.Kind
		dest     string
		expected types.Flags
	}{
		{"create new", "/pics/new", types.KindCreateFolder, "/pics/new", 0},
		{"create existing", "/pics/existing", types.KindCreateFolder, "/pics/existing", types.ErrAlreadyExists},
		{"create without parent", "/pics/x/y", types.KindCreateFolder, "/pics/x/y", types.ErrNoDestDir},
		{"rename folder", "/pics/album", types.KindRenameFolder, "/pics/album2", 0},
		{"rename onto existing", "/pics/album", types.KindRenameFolder, "/pics/existing", types.ErrAlreadyExists},
		{"rename missing", "/pics/none", types.KindRenameFolder, "/pics/none2", types.ErrNoSource},
		{"rename same", "/pics/album", types.KindRenameFolder, "/pics/album", types.WarnSame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _ := newTestRegistry(t, tree)
			h := enroll(t, reg, tt.path, tt.kind, tt.dest)
			assert.Equal(t, tt.expected, reg.Verify(h, reg.CountDests([]Handle{h})))
		})
	}
}

func TestVerifyRenameFolderContent(t *testing.T) {
	reg, fs := newTestRegistry(t, testutil.FileTree{
		"album": testutil.FileTree{"a.jpg": "A", "b.jpg": "B"},
	})

	root := enroll(t, reg, "/pics/album", types.KindRenameFolder, "/pics/trip")
	a := enroll(t, reg, "/pics/album/a.jpg", types.KindRenameFolder, "/pics/trip/a.jpg")
	b := enroll(t, reg, "/pics/album/b.jpg", types.KindRenameFolder, "/pics/trip/b.jpg")
	dests := reg.CountDests([]Handle{a, b, root})

	// the new parent does not exist yet; content follows the directory
	assert.Equal(t, types.Flags(0), reg.Verify(a, dests))
	assert.Equal(t, types.Flags(0), reg.Verify(root, dests))

	require.NoError(t, fs.Remove("/pics/album/b.jpg"))
	assert.Equal(t, types.ErrNoSource, reg.Verify(b, dests))
}

func TestVerifyDuplicateDest(t *testing.T) {
	reg, _ := newTestRegistry(t, testutil.FileTree{"a.jpg": "A", "b.jpg": "B"})

	a := enroll(t, reg, "/pics/a.jpg", types.KindRename, "/pics/c.jpg")
	b := enroll(t, reg, "/pics/b.jpg", types.KindRename, "/pics/c.jpg")
	dests := reg.CountDests([]Handle{a, b})

	assert.True(t, reg.Verify(a, dests).Has(types.ErrDuplicateDest))
	assert.True(t, reg.Verify(b, dests).Has(types.ErrDuplicateDest))
}

func TestVerifyUnsavedMetadata(t *testing.T) {
	fs := filesystem.NewMemory()
	testutil.WriteTree(t, fs, "/pics", testutil.FileTree{"a.jpg": "A"})
	reg := NewRegistry(Options{
		FS:              fs,
		PendingMetadata: func(path string) bool { return path == "/pics/a.jpg" },
	})

	h := enroll(t, reg, "/pics/a.jpg", types.KindWriteMetadata, "")
	assert.Equal(t, types.WarnUnsavedMetadata, reg.Verify(h, reg.CountDests([]Handle{h})))
}

func TestVerifyPermissions(t *testing.T) {
	fs := filesystem.NewMemory()
	testutil.WriteTree(t, fs, "/pics", testutil.FileTree{
		"a.jpg":  "A",
		"locked": testutil.FileTree{"b.jpg": "B"},
		"ro":     testutil.FileTree{},
	})
	require.NoError(t, fs.Chmod("/pics/a.jpg", 0200))
	require.NoError(t, fs.Chmod("/pics/locked", 0555))
	require.NoError(t, fs.Chmod("/pics/ro", 0555))
	reg := NewRegistry(Options{FS: fs})

	h := enroll(t, reg, "/pics/a.jpg", types.KindCopy, "/pics/c.jpg")
	assert.True(t, reg.Verify(h, nil).Has(types.ErrNoReadPerm))
	reg.FreeChange(h)

	h = enroll(t, reg, "/pics/locked/b.jpg", types.KindDelete, "")
	assert.True(t, reg.Verify(h, nil).Has(types.ErrNoWritePermDir))

	require.NoError(t, fs.Chmod("/pics/a.jpg", 0644))
	h = enroll(t, reg, "/pics/a.jpg", types.KindCopy, "/pics/ro/a.jpg")
	flags := reg.Verify(h, nil)
	assert.Equal(t, types.WarnNoWritePermDestDir, flags)
	assert.Equal(t, types.SeverityWarning, flags.Severity())
}

func TestVerifyNotEnrolled(t *testing.T) {
	reg, _ := newTestRegistry(t, testutil.FileTree{"a.jpg": "A"})
	h, err := reg.Get("/pics/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, types.ErrGeneric, reg.Verify(h, nil))
}
