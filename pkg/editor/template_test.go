package editor

import (
	"testing"

	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/filesystem"
	"github.com/arthur-debert/photobatch/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		flags   OperationalFlags
		failure Failure
	}{
		{"for each", "gimp %f", FlagForEach, 0},
		{"list", "rawtherapee %F", FlagFileList, 0},
		{"filter", "convert %f %d", FlagForEach | FlagDest, 0},
		{"workdir", "cd %p && ls", FlagWorkDir, 0},
		{"literal percent", "printf 100%%", 0, 0},
		{"empty", "   ", 0, FailEmpty},
		{"unknown placeholder", "gimp %x", 0, FailSyntax},
		{"dangling percent", "gimp %", 0, FailSyntax},
		{"both file forms", "tool %f %F", 0, FailIncompatible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, fail := ParseTemplate(tt.raw)
			assert.Equal(t, tt.failure, fail)
			if tt.failure == 0 {
				require.NotNil(t, tmpl)
				assert.Equal(t, tt.flags, tmpl.Flags())
			}
		})
	}
}

func TestRenderQuotes(t *testing.T) {
	tmpl, fail := ParseTemplate("tool %F --out %d --in %p 100%%")
	require.Zero(t, fail)

	line := tmpl.Render([]string{"/a/it's.jpg", "/a/b c.jpg"}, "/out dir")
	assert.Equal(t, `tool '/a/it'\''s.jpg' '/a/b c.jpg' --out '/out dir' --in '/a' 100%`, line)
}

func TestFailureString(t *testing.T) {
	assert.Equal(t, "ok", Failure(0).String())
	assert.Equal(t, "non-zero exit status, some files skipped", (FailStatus | FailSkipped).String())
}

func TestOutcomeClassification(t *testing.T) {
	assert.Equal(t, StatusOk, Outcome{}.Status())
	assert.True(t, Outcome{}.Ok())

	skipped := Outcome{Failures: FailSkipped}
	assert.Equal(t, StatusWarning, skipped.Status())
	assert.True(t, skipped.SkippedOnly())
	assert.False(t, skipped.ErrorsButSkipped())

	failed := Outcome{Failures: FailStatus | FailSkipped}
	assert.Equal(t, StatusFatal, failed.Status())
	assert.True(t, failed.ErrorsButSkipped())
	assert.False(t, failed.SkippedOnly())
}

func TestDescriptorAccepts(t *testing.T) {
	d := &Descriptor{Key: "raw", Command: "dcraw %f", Patterns: []string{"*.{nef,cr2}", "*.dng"}}

	assert.True(t, d.Accepts("/pics/A.NEF"))
	assert.True(t, d.Accepts("/pics/b.cr2"))
	assert.True(t, d.Accepts("/pics/c.dng"))
	assert.False(t, d.Accepts("/pics/d.jpg"))

	open := &Descriptor{Key: "any", Command: "open %f"}
	assert.True(t, open.Accepts("/pics/d.jpg"))
}

func TestDescriptorFlags(t *testing.T) {
	d := &Descriptor{Key: "f", Command: "convert %f %d", Filter: true, Blocking: true, Terminal: true}
	flags := d.Flags()
	assert.True(t, flags.Has(FlagForEach|FlagDest|FlagFilter|FlagBlocking|FlagTerminal))
	assert.False(t, flags.Has(FlagKeepFullscreen))
	assert.Equal(t, "f", d.DisplayName())
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	err := reg.Register(&Descriptor{Key: "bad", Command: "tool %q"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrEditorInvalid))
	err = reg.Register(&Descriptor{Command: "tool %f"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrEditorInvalid))

	require.NoError(t, reg.Register(&Descriptor{Key: "gimp", Name: "GIMP", Command: "gimp %F"}))
	d, err := reg.Lookup("gimp")
	require.NoError(t, err)
	assert.Equal(t, "GIMP", d.DisplayName())

	_, err = reg.Lookup("missing")
	assert.True(t, errors.IsErrorCode(err, errors.ErrEditorNotFound))
}

func TestRegistryLoadDir(t *testing.T) {
	fs := filesystem.NewMemory()
	testutil.WriteTree(t, fs, "/editors", testutil.FileTree{
		"resize.yaml": "name: Resize\ncommand: convert %f -resize 50% %d\nfilter: true\n",
		"view.yml":    "key: viewer\ncommand: feh %F\npatterns: ['*.jpg']\n",
		"notes.txt":   "ignored",
	})
	reg := NewRegistry()

	// a literal percent must be doubled; the resize template is invalid
	err := reg.LoadDir(fs, "/editors")
	require.Error(t, err)

	testutil.CreateFile(t, fs, "/editors/resize.yaml", "name: Resize\ncommand: convert %f -resize 50%% %d\nfilter: true\n")
	reg = NewRegistry()
	require.NoError(t, reg.LoadDir(fs, "/editors"))

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "resize", list[0].Key)
	assert.True(t, list[0].Filter)
	assert.Equal(t, "viewer", list[1].Key)
	assert.Equal(t, []string{"*.jpg"}, list[1].Patterns)

	require.NoError(t, NewRegistry().LoadDir(fs, "/nowhere"))
}
