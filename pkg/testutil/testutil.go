package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/photobatch/pkg/types"
)

// CreateFile writes a file with the given content, creating parents.
// It fails the test if the file cannot be created.
func CreateFile(t *testing.T, fs types.FS, path, content string) string {
	t.Helper()

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", path, err)
	}
	if err := fs.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}
	return path
}

// CreateDir creates a directory and its parents
func CreateDir(t *testing.T, fs types.FS, path string) string {
	t.Helper()

	if err := fs.MkdirAll(path, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", path, err)
	}
	return path
}

// CreateSymlink creates a symbolic link pointing to target
func CreateSymlink(t *testing.T, fs types.FS, target, link string) {
	t.Helper()

	if err := fs.MkdirAll(filepath.Dir(link), 0755); err != nil {
		t.Fatalf("Failed to create parent directory for symlink %s: %v", link, err)
	}
	if err := fs.Symlink(target, link); err != nil {
		t.Fatalf("Failed to create symlink %s -> %s: %v", link, target, err)
	}
}

// Exists reports whether path exists without following links
func Exists(fs types.FS, path string) bool {
	_, err := fs.Lstat(path)
	return err == nil
}

// ReadFile returns the content of a file as a string.
// It fails the test if the file cannot be read.
func ReadFile(t *testing.T, fs types.FS, path string) string {
	t.Helper()

	content, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// AssertFileContent checks that a file exists and has the expected content
func AssertFileContent(t *testing.T, fs types.FS, path, expected string) {
	t.Helper()

	if !Exists(fs, path) {
		t.Fatalf("File %s does not exist", path)
	}
	if actual := ReadFile(t, fs, path); actual != expected {
		t.Errorf("File %s content mismatch\nExpected: %q\nActual: %q", path, expected, actual)
	}
}

// AssertNoFile checks that nothing exists at path
func AssertNoFile(t *testing.T, fs types.FS, path string) {
	t.Helper()

	if Exists(fs, path) {
		t.Errorf("File %s exists but should not", path)
	}
}

// SkipIfRoot skips tests that rely on permission bits being enforced
func SkipIfRoot(t *testing.T) {
	t.Helper()

	if os.Geteuid() == 0 {
		t.Skip("Permission checks are bypassed for root")
	}
}
