package scanner

import (
	"testing"

	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/filedata"
	"github.com/arthur-debert/photobatch/pkg/filesystem"
	"github.com/arthur-debert/photobatch/pkg/testutil"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nested(depth int) testutil.FileTree {
	tree := testutil.FileTree{"leaf.jpg": "L"}
	for i := 0; i < depth; i++ {
		tree = testutil.FileTree{"d": tree}
	}
	return tree
}

func TestScanOrdersDirsDeepestFirst(t *testing.T) {
	fs := filesystem.NewMemory()
	testutil.WriteTree(t, fs, "/Pics", testutil.FileTree{
		"a.jpg": "A",
		"Sub": testutil.FileTree{
			"b.jpg": "B",
			"Deep":  testutil.FileTree{"c.jpg": "C"},
		},
		"Other": testutil.FileTree{},
	})

	tree, err := New(fs).Scan("/Pics", DefaultMaxDepth)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"/Pics/a.jpg", "/Pics/Sub/b.jpg", "/Pics/Sub/Deep/c.jpg"}, tree.Files)
	require.Len(t, tree.Dirs, 3)
	assert.Equal(t, "/Pics/Sub/Deep", tree.Dirs[0])
	assert.ElementsMatch(t, []string{"/Pics/Other", "/Pics/Sub"}, tree.Dirs[1:])
}

func TestScanDepthLimit(t *testing.T) {
	fs := filesystem.NewMemory()
	testutil.WriteTree(t, fs, "/ok", nested(5))
	testutil.WriteTree(t, fs, "/deep", nested(6))
	s := New(fs)

	_, err := s.Scan("/ok", 5)
	require.NoError(t, err)

	_, err = s.Scan("/deep", 5)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrScanDepth))
}

func TestScanDoesNotFollowSymlinks(t *testing.T) {
	root := t.TempDir()
	fs := filesystem.NewOS()
	testutil.WriteTree(t, fs, root, testutil.FileTree{
		"real": testutil.FileTree{"a.jpg": "A"},
		"Pics": testutil.FileTree{
			"loop":  testutil.Link(".."),
			"alias": testutil.Link("../real"),
		},
	})

	tree, err := New(fs).Scan(root+"/Pics", 1)
	require.NoError(t, err)
	assert.Len(t, tree.Files, 2)
	assert.Empty(t, tree.Dirs)
}

func TestScanRejectsFiles(t *testing.T) {
	fs := filesystem.NewMemory()
	testutil.CreateFile(t, fs, "/a.jpg", "A")

	_, err := New(fs).Scan("/a.jpg", 5)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = New(fs).Scan("/missing", 5)
	assert.True(t, errors.IsErrorCode(err, errors.ErrScanRead))
}

func TestEnrollDeleteTree(t *testing.T) {
	fs := filesystem.NewMemory()
	testutil.WriteTree(t, fs, "/Pics", testutil.FileTree{
		"raw.nef":     "RAW",
		"raw.nef.xmp": "<x/>",
		"lonely.xmp":  "<x/>",
		"Sub":         testutil.FileTree{"b.jpg": "B"},
	})
	reg := filedata.NewRegistry(filedata.Options{FS: fs})

	en, err := New(fs).Enroll(reg, "/Pics", types.KindDeleteFolder, "", DefaultMaxDepth)
	require.NoError(t, err)

	var paths []string
	for _, h := range en.Content {
		paths = append(paths, reg.Path(h))
		assert.Equal(t, types.KindDeleteFolder, reg.Change(h).Kind)
	}
	assert.Equal(t, []string{"/Pics/raw.nef", "/Pics/Sub/b.jpg", "/Pics/lonely.xmp", "/Pics/Sub"}, paths)

	raw := en.Content[0]
	require.Len(t, reg.Sidecars(raw), 1)
	assert.True(t, reg.Enrolled(reg.Sidecars(raw)[0]))

	assert.Equal(t, "/Pics", reg.Path(en.Root))
	assert.Equal(t, types.KindDeleteFolder, reg.Change(en.Root).Kind)

	en.Release(reg)
	assert.Equal(t, 0, reg.Len())
}

func TestEnrollRenameTreeRehomesContent(t *testing.T) {
	fs := filesystem.NewMemory()
	testutil.WriteTree(t, fs, "/Pics", testutil.FileTree{
		"Sub": testutil.FileTree{"b.jpg": "B", "b.jpg.xmp": "<x/>"},
	})
	reg := filedata.NewRegistry(filedata.Options{FS: fs})

	en, err := New(fs).Enroll(reg, "/Pics", types.KindRenameFolder, "/Album", DefaultMaxDepth)
	require.NoError(t, err)

	b := en.Content[0]
	assert.Equal(t, "/Album/Sub/b.jpg", reg.Change(b).Dest)
	assert.Equal(t, "/Album/Sub/b.jpg.xmp", reg.Change(reg.Sidecars(b)[0]).Dest)
	assert.Equal(t, "/Album", reg.Change(en.Root).Dest)
}

func TestEnrollIsAllOrNothing(t *testing.T) {
	fs := filesystem.NewMemory()
	testutil.WriteTree(t, fs, "/Pics", testutil.FileTree{
		"a.jpg": "A",
		"b.jpg": "B",
		"Sub":   testutil.FileTree{"c.jpg": "C"},
	})
	reg := filedata.NewRegistry(filedata.Options{FS: fs})

	// another batch already owns one descendant
	busy, err := reg.Get("/Pics/Sub/c.jpg")
	require.NoError(t, err)
	require.NoError(t, reg.NewChange(busy, types.KindRename, "/Pics/Sub/d.jpg"))

	_, err = New(fs).Enroll(reg, "/Pics", types.KindDeleteFolder, "", DefaultMaxDepth)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyEnrolled))

	// only the foreign entry survives, untouched
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, types.KindRename, reg.Change(busy).Kind)
}

func TestEnrollDepthExceededEnrollsNothing(t *testing.T) {
	fs := filesystem.NewMemory()
	testutil.WriteTree(t, fs, "/Pics", testutil.FileTree{"a.jpg": "A", "Sub": nested(6)})
	reg := filedata.NewRegistry(filedata.Options{FS: fs})

	_, err := New(fs).Enroll(reg, "/Pics", types.KindDeleteFolder, "", DefaultMaxDepth)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrScanDepth))
	assert.Equal(t, 0, reg.Len())
}
