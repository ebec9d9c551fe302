package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	dir    string
	config string
}

func newCLIEnv(t *testing.T, extraConfig string) *cliEnv {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	confDir := t.TempDir()
	config := filepath.Join(confDir, "config.toml")
	content := "[editors]\ndir = \"" + filepath.Join(confDir, "editors") + "\"\n" + extraConfig
	require.NoError(t, os.WriteFile(config, []byte(content), 0644))

	dir := t.TempDir()
	for name, body := range map[string]string{
		"a.jpg":     "A",
		"a.jpg.xmp": "<x:xmpmeta xmlns:x=\"adobe:ns:meta/\"/>",
		"b.jpg":     "B",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "out"), 0755))
	return &cliEnv{dir: dir, config: config}
}

func (e *cliEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	interactive := false
	cmd := newRootCmd(&globalOptions{interactive: &interactive})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.config, "--format", "text"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	assert.NoError(t, err, "%s should exist", path)
}

func assertMissing(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "%s should not exist", path)
}

func TestCopyCarriesSidecars(t *testing.T) {
	e := newCLIEnv(t, "")

	out, err := e.run(t, "copy", e.path("a.jpg"), "--to", e.path("out"))
	require.NoError(t, err)

	assert.Contains(t, out, "Copy 2 files: done (2 done, 0 failed")
	assertExists(t, e.path("out/a.jpg"))
	assertExists(t, e.path("out/a.jpg.xmp"))
	assertExists(t, e.path("a.jpg"))
}

func TestNoSidecarsFlag(t *testing.T) {
	e := newCLIEnv(t, "")

	_, err := e.run(t, "--no-sidecars", "move", e.path("a.jpg"), "--to", e.path("out"))
	require.NoError(t, err)

	assertExists(t, e.path("out/a.jpg"))
	assertMissing(t, e.path("out/a.jpg.xmp"))
	assertExists(t, e.path("a.jpg.xmp"))
}

func TestCopyWithoutDestinationAndNoTerminal(t *testing.T) {
	e := newCLIEnv(t, "")

	_, err := e.run(t, "copy", e.path("a.jpg"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrBatchState), "got %v", err)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	e := newCLIEnv(t, "")

	_, err := e.run(t, "delete", e.path("b.jpg"))
	assert.Error(t, err)
	assertExists(t, e.path("b.jpg"))

	_, err = e.run(t, "--yes", "delete", e.path("b.jpg"))
	require.NoError(t, err)
	assertMissing(t, e.path("b.jpg"))
}

func TestDeleteConfirmationCanBeDisabled(t *testing.T) {
	e := newCLIEnv(t, "[confirm]\ndelete = false\n")

	_, err := e.run(t, "delete", e.path("b.jpg"))
	require.NoError(t, err)
	assertMissing(t, e.path("b.jpg"))
}

func TestCheckOnly(t *testing.T) {
	e := newCLIEnv(t, "")

	out, err := e.run(t, "--check", "move", e.path("a.jpg"), "--to", e.path("missing"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidationFatal), "got %v", err)
	assert.Contains(t, out, "### Errors")
	assertExists(t, e.path("a.jpg"))

	out, err = e.run(t, "--check", "copy", e.path("b.jpg"), "--to", e.path("out"))
	require.NoError(t, err)
	assert.Contains(t, out, "No problems found.")
	assertMissing(t, e.path("out/b.jpg"))
}

func TestRenameCommand(t *testing.T) {
	e := newCLIEnv(t, "")

	_, err := e.run(t, "rename", e.path("a.jpg"), "c.jpg")
	require.NoError(t, err)
	assertExists(t, e.path("c.jpg"))
	assertMissing(t, e.path("a.jpg"))

	_, err = e.run(t, "rename", e.path("c.jpg"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestRenamePairs(t *testing.T) {
	paths, dests := renamePairs([]string{"/p/a.jpg", "b.jpg", "/p/c.jpg", "/q/d.jpg"})
	assert.Equal(t, []string{"/p/a.jpg", "/p/c.jpg"}, paths)
	assert.Equal(t, []string{"/p/b.jpg", "/q/d.jpg"}, dests)
}

func TestFolderCommands(t *testing.T) {
	e := newCLIEnv(t, "")

	_, err := e.run(t, "mkdir", e.path("new"))
	require.NoError(t, err)
	assertExists(t, e.path("new"))

	_, err = e.run(t, "rename-dir", e.path("new"), "renamed")
	require.NoError(t, err)
	assertExists(t, e.path("renamed"))

	_, err = e.run(t, "--yes", "rmdir", e.path("renamed"))
	require.NoError(t, err)
	assertMissing(t, e.path("renamed"))
}

func TestWriteAndReadMetadata(t *testing.T) {
	e := newCLIEnv(t, "")

	_, err := e.run(t, "--yes", "write-meta", e.path("b.jpg"), "--set", "xmp:Rating=4", "--set", "dc:format=image/jpeg")
	require.NoError(t, err)
	assertExists(t, e.path("b.jpg.xmp"))

	out, err := e.run(t, "read-meta", e.path("b.jpg"))
	require.NoError(t, err)
	assert.Contains(t, out, "dc:format = image/jpeg\n")
	assert.Contains(t, out, "xmp:Rating = 4\n")
}

func TestParseSets(t *testing.T) {
	tests := []struct {
		name    string
		sets    []string
		want    map[string]string
		wantErr bool
	}{
		{"single", []string{"xmp:Rating=5"}, map[string]string{"xmp:Rating": "5"}, false},
		{"value with equals", []string{"dc:title=a=b"}, map[string]string{"dc:title": "a=b"}, false},
		{"empty value", []string{"xmp:Label="}, map[string]string{"xmp:Label": ""}, false},
		{"nothing", nil, nil, true},
		{"no namespace", []string{"Rating=5"}, nil, true},
		{"no value", []string{"xmp:Rating"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSets(tt.sets)
			if tt.wantErr {
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterAndEditors(t *testing.T) {
	e := newCLIEnv(t, `
[editors.commands.dup]
name = "Duplicate"
command = "cp %f %d"
filter = true
`)

	out, err := e.run(t, "editors")
	require.NoError(t, err)
	assert.Contains(t, out, "dup")
	assert.Contains(t, out, "Duplicate")
	assert.Contains(t, out, "filter")

	_, err = e.run(t, "filter", "dup", e.path("b.jpg"), "--to", e.path("out"))
	require.NoError(t, err)
	assertExists(t, e.path("out/b.jpg"))
}

func TestMiscCommands(t *testing.T) {
	e := newCLIEnv(t, "")

	out, err := e.run(t, "genconfig")
	require.NoError(t, err)
	assert.Contains(t, out, "# max_scan_depth = 5")

	out, err = e.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "photobatch version")

	out, err = e.run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "photobatch")

	_, err = e.run(t)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestBadConfig(t *testing.T) {
	e := newCLIEnv(t, "[engine]\nmax_scan_depth = 0\n")

	_, err := e.run(t, "copy", e.path("a.jpg"), "--to", e.path("out"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
}
