package testutil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/arthur-debert/photobatch/pkg/types"
)

// FileTree represents a directory structure for testing. Values are file
// contents (string), nested trees (FileTree) or symlinks (Link).
type FileTree map[string]interface{}

// Link is a FileTree entry describing a symbolic link
type Link string

// WriteTree recursively creates tree under basePath
func WriteTree(t *testing.T, fsys types.FS, basePath string, tree FileTree) {
	t.Helper()

	if err := fsys.MkdirAll(basePath, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", basePath, err)
	}

	for name, content := range tree {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			CreateFile(t, fsys, fullPath, v)
		case FileTree:
			WriteTree(t, fsys, fullPath, v)
		case Link:
			CreateSymlink(t, fsys, string(v), fullPath)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}

// Snapshot maps every path under root (relative, slash separated) to a
// description of what is there: file content, "<dir>" or "-> target".
type Snapshot map[string]string

// TakeSnapshot walks root without following links
func TakeSnapshot(t *testing.T, fsys types.FS, root string) Snapshot {
	t.Helper()

	snap := Snapshot{}
	var walk func(dir string)
	walk = func(dir string) {
		entries, err := fsys.ReadDir(dir)
		if err != nil {
			t.Fatalf("Failed to read directory %s: %v", dir, err)
		}
		for _, e := range entries {
			full := filepath.Join(dir, e.Name())
			rel, _ := filepath.Rel(root, full)
			rel = filepath.ToSlash(rel)

			info, err := fsys.Lstat(full)
			if err != nil {
				t.Fatalf("Failed to stat %s: %v", full, err)
			}
			switch {
			case info.Mode()&fs.ModeSymlink != 0:
				target, _ := fsys.Readlink(full)
				snap[rel] = "-> " + target
			case info.IsDir():
				snap[rel] = "<dir>"
				walk(full)
			default:
				snap[rel] = ReadFile(t, fsys, full)
			}
		}
	}
	walk(root)
	return snap
}

// Paths returns the sorted keys of the snapshot
func (s Snapshot) Paths() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// String renders the snapshot one entry per line, for failure messages
func (s Snapshot) String() string {
	var b strings.Builder
	for _, p := range s.Paths() {
		b.WriteString(p)
		b.WriteString(": ")
		b.WriteString(s[p])
		b.WriteString("\n")
	}
	return b.String()
}
