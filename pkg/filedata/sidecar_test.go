package filedata

import (
	"testing"

	"github.com/arthur-debert/photobatch/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupLinksSidecars(t *testing.T) {
	reg, _ := newTestRegistry(t, testutil.FileTree{
		"raw.nef":     "RAW",
		"raw.nef.xmp": "<x/>",
		"raw.pp3":     "pp3",
		"other.jpg":   "O",
	})

	h, err := reg.Group("/pics/raw.nef")
	require.NoError(t, err)

	sidecars := reg.Sidecars(h)
	require.Len(t, sidecars, 2)
	assert.Equal(t, "/pics/raw.nef.xmp", reg.Path(sidecars[0]))
	assert.Equal(t, "/pics/raw.pp3", reg.Path(sidecars[1]))

	for _, sc := range sidecars {
		assert.Equal(t, h, reg.Parent(sc))
		assert.True(t, reg.IsSidecar(sc))
		assert.Equal(t, 1, reg.Refs(sc))
	}
	assert.False(t, reg.IsSidecar(h))
	assert.Len(t, reg.Members(h), 3)
}

func TestGroupIsIdempotent(t *testing.T) {
	reg, _ := newTestRegistry(t, testutil.FileTree{
		"raw.nef":     "RAW",
		"raw.nef.xmp": "<x/>",
	})

	h, err := reg.Group("/pics/raw.nef")
	require.NoError(t, err)
	h2, err := reg.Group("/pics/raw.nef")
	require.NoError(t, err)

	assert.Equal(t, h, h2)
	assert.Len(t, reg.Sidecars(h), 1)
}

func TestSidecarIsNotGroupedItself(t *testing.T) {
	reg, _ := newTestRegistry(t, testutil.FileTree{
		"raw.nef.xmp":     "<x/>",
		"raw.nef.xmp.xmp": "<x/>",
	})

	h, err := reg.Group("/pics/raw.nef.xmp")
	require.NoError(t, err)
	assert.Empty(t, reg.Sidecars(h))
}

func TestReleasingPrimaryReleasesSidecars(t *testing.T) {
	reg, _ := newTestRegistry(t, testutil.FileTree{
		"raw.nef":     "RAW",
		"raw.nef.xmp": "<x/>",
	})

	h, err := reg.Group("/pics/raw.nef")
	require.NoError(t, err)
	sc := reg.Sidecars(h)[0]

	reg.Unref(h)
	assert.False(t, reg.Valid(h))
	assert.False(t, reg.Valid(sc))
	assert.Equal(t, 0, reg.Len())
}

func TestSidecarOutlivesPrimaryWhenReferenced(t *testing.T) {
	reg, _ := newTestRegistry(t, testutil.FileTree{
		"raw.nef":     "RAW",
		"raw.nef.xmp": "<x/>",
	})

	h, err := reg.Group("/pics/raw.nef")
	require.NoError(t, err)
	sc, err := reg.Get("/pics/raw.nef.xmp")
	require.NoError(t, err)

	reg.Unref(h)
	require.True(t, reg.Valid(sc))
	assert.True(t, reg.Parent(sc).IsZero())
	reg.Unref(sc)
	assert.Equal(t, 0, reg.Len())
}

func TestSidecarDest(t *testing.T) {
	tests := []struct {
		name        string
		primarySrc  string
		primaryDest string
		sidecarSrc  string
		expected    string
	}{
		{"move keeps name", "/a/raw.nef", "/b/raw.nef", "/a/raw.nef.xmp", "/b/raw.nef.xmp"},
		{"rename full name", "/a/raw.nef", "/a/new.nef", "/a/raw.nef.xmp", "/a/new.nef.xmp"},
		{"rename stem", "/a/raw.nef", "/a/new.nef", "/a/raw.pp3", "/a/new.pp3"},
		{"no destination", "/a/raw.nef", "", "/a/raw.nef.xmp", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SidecarDest(tt.primarySrc, tt.primaryDest, tt.sidecarSrc))
		})
	}
}

func TestGroupDropsMissingSidecars(t *testing.T) {
	reg, fs := newTestRegistry(t, testutil.FileTree{
		"raw.nef":     "RAW",
		"raw.nef.xmp": "<x/>",
		"raw.pp3":     "pp3",
	})

	h, err := reg.Group("/pics/raw.nef")
	require.NoError(t, err)
	require.Len(t, reg.Sidecars(h), 2)

	require.NoError(t, fs.Remove("/pics/raw.nef.xmp"))
	h2, err := reg.Group("/pics/raw.nef")
	require.NoError(t, err)
	require.Equal(t, h, h2)

	sidecars := reg.Sidecars(h)
	require.Len(t, sidecars, 1)
	assert.Equal(t, "/pics/raw.pp3", reg.Path(sidecars[0]))
	assert.Equal(t, 2, reg.Len())
}

func TestSidecarCandidates(t *testing.T) {
	reg, _ := newTestRegistry(t, testutil.FileTree{})

	assert.Equal(t, []string{
		"/pics/raw.nef.xmp", "/pics/raw.xmp",
		"/pics/raw.nef.pp3", "/pics/raw.pp3",
		"/pics/raw.nef.dop", "/pics/raw.dop",
	}, reg.SidecarCandidates("/pics/raw.nef"))
}
