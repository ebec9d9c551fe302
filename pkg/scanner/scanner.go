// Package scanner expands a directory into the content a recursive delete or
// rename has to process, and enrolls that content into the file registry.
package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/logging"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/rs/zerolog"
)

// DefaultMaxDepth bounds recursion to guard against filesystem cycles
const DefaultMaxDepth = 5

// Tree is the result of a scan. Files holds every non-directory entry
// (symlinks included, even when they point at a directory). Dirs holds
// every subdirectory, deepest first, so that processing Dirs in order
// always empties a child before its parent.
type Tree struct {
	Root  string
	Files []string
	Dirs  []string
}

// Scanner reads directory trees through a types.FS
type Scanner struct {
	fs     types.FS
	logger zerolog.Logger
}

// New creates a scanner reading through fsys
func New(fsys types.FS) *Scanner {
	return &Scanner{
		fs:     fsys,
		logger: logging.GetLogger("scanner"),
	}
}

// Scan reads dir recursively without following symlinks. The root is at
// depth 0; reaching a subdirectory deeper than maxDepth is an error, never
// a silent truncation.
func (s *Scanner) Scan(dir string, maxDepth int) (*Tree, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	info, err := s.fs.Lstat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrScanRead, "cannot read %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidInput, "%s is not a directory", dir)
	}

	tree := &Tree{Root: dir}
	type level struct {
		path  string
		depth int
	}
	var dirsByDepth [][]string

	queue := []level{{path: dir, depth: 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		entries, err := s.fs.ReadDir(cur.path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrScanRead, "cannot read %s", cur.path)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, entry := range entries {
			full := filepath.Join(cur.path, entry.Name())
			if entry.Type()&fs.ModeSymlink != 0 || !entry.IsDir() {
				tree.Files = append(tree.Files, full)
				continue
			}

			depth := cur.depth + 1
			if depth > maxDepth {
				return nil, errors.Newf(errors.ErrScanDepth, "%s is nested deeper than %d levels", full, maxDepth).
					WithDetail("path", full).
					WithDetail("maxDepth", maxDepth)
			}
			for len(dirsByDepth) < depth {
				dirsByDepth = append(dirsByDepth, nil)
			}
			dirsByDepth[depth-1] = append(dirsByDepth[depth-1], full)
			queue = append(queue, level{path: full, depth: depth})
		}
	}

	for i := len(dirsByDepth) - 1; i >= 0; i-- {
		tree.Dirs = append(tree.Dirs, dirsByDepth[i]...)
	}

	s.logger.Debug().
		Str("dir", dir).
		Int("files", len(tree.Files)).
		Int("dirs", len(tree.Dirs)).
		Msg("Directory scanned")
	return tree, nil
}
