package filedata

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/photobatch/pkg/types"
)

// DestCounts counts how many entries of a batch share each destination
type DestCounts map[string]int

// CountDests builds the destination counts of targets
func (r *Registry) CountDests(targets []Handle) DestCounts {
	counts := make(DestCounts, len(targets))
	for _, t := range targets {
		if c := r.Change(t); c != nil && c.Dest != "" {
			counts[c.Dest]++
		}
	}
	return counts
}

// Verify checks the enrolled change of h against the filesystem and the
// destinations of its batch. The resulting flags are stored on the
// ChangeInfo and returned. An entry that is not enrolled yields ErrGeneric.
func (r *Registry) Verify(h Handle, dests DestCounts) types.Flags {
	s, err := r.lookup(h)
	if err != nil || s.change == nil {
		return types.ErrGeneric
	}
	change := s.change

	var flags types.Flags
	switch change.Kind {
	case types.KindCreateFolder:
		flags = r.verifyCreateFolder(change)
	case types.KindRenameFolder:
		flags = r.verifyRenameFolder(change)
	default:
		flags = r.verifyFile(change)
	}

	if change.Dest != "" && dests[change.Dest] > 1 {
		flags |= types.ErrDuplicateDest
	}

	change.Flags = flags
	if flags != 0 {
		r.logger.Debug().
			Str("path", s.path).
			Str("kind", change.Kind.String()).
			Str("flags", flags.String()).
			Msg("Verify flagged change")
	}
	return flags
}

func (r *Registry) verifyCreateFolder(c *types.ChangeInfo) types.Flags {
	var flags types.Flags
	if c.Dest == "" {
		return types.ErrNoDest
	}
	if _, err := r.fs.Lstat(c.Dest); err == nil {
		flags |= types.ErrAlreadyExists
	}
	flags |= r.verifyDestDir(c.Dest)
	return flags
}

func (r *Registry) verifyRenameFolder(c *types.ChangeInfo) types.Flags {
	if r.followsParent(c) {
		// content moves with its directory; only the source must still exist
		if _, err := r.fs.Lstat(c.Source); err != nil {
			return types.ErrNoSource
		}
		return 0
	}

	var flags types.Flags
	info, err := r.fs.Lstat(c.Source)
	switch {
	case err != nil:
		flags |= types.ErrNoSource
	case !info.IsDir():
		flags |= types.ErrGeneric
	}
	if !r.fs.Access(filepath.Dir(c.Source), types.AccessWrite) {
		flags |= types.ErrNoWritePermDir
	}

	if c.Dest == "" {
		return flags | types.ErrNoDest
	}
	if c.Dest == c.Source {
		return flags | types.WarnSame
	}
	if _, err := r.fs.Lstat(c.Dest); err == nil {
		flags |= types.ErrAlreadyExists
	}
	flags |= r.verifyDestDir(c.Dest)
	return flags
}

// followsParent reports whether c is the content of a directory that is
// itself being renamed to the parent of c's destination
func (r *Registry) followsParent(c *types.ChangeInfo) bool {
	if c.Dest == "" {
		return false
	}
	parent, ok := r.byPath[filepath.Dir(c.Source)]
	if !ok {
		return false
	}
	pc := r.Change(parent)
	return pc != nil && pc.Kind == types.KindRenameFolder && pc.Dest == filepath.Dir(c.Dest)
}

func (r *Registry) verifyFile(c *types.ChangeInfo) types.Flags {
	var flags types.Flags

	info, err := r.fs.Lstat(c.Source)
	if err != nil {
		return types.ErrNoSource
	}
	if info.IsDir() && readsContent(c.Kind) {
		flags |= types.ErrSourceIsDir
	}

	if readsSource(c.Kind) && !r.fs.Access(c.Source, types.AccessRead) {
		flags |= types.ErrNoReadPerm
	}
	if c.Kind.RemovesSource() && !r.fs.Access(filepath.Dir(c.Source), types.AccessWrite) {
		flags |= types.ErrNoWritePermDir
	}
	if c.Kind == types.KindWriteMetadata && !r.fs.Access(c.Source, types.AccessWrite) {
		flags |= types.WarnNoWritePerm
	}
	if r.pendingMetadata(c.Source) {
		flags |= types.WarnUnsavedMetadata
	}

	if !c.Kind.NeedsDest() {
		return flags
	}
	if c.Dest == "" {
		return flags | types.ErrNoDest
	}
	if c.Dest == c.Source {
		return flags | types.WarnSame
	}

	flags |= r.verifyDestDir(c.Dest)
	if dinfo, err := r.fs.Stat(c.Dest); err == nil {
		if dinfo.IsDir() {
			flags |= types.ErrDestIsDir
		} else {
			flags |= types.WarnDestExists
		}
	}

	if c.Kind == types.KindRename {
		oldExt := filepath.Ext(c.Source)
		newExt := filepath.Ext(c.Dest)
		switch {
		case newExt == "":
			flags |= types.WarnNoExtension
		case !strings.EqualFold(oldExt, newExt):
			flags |= types.WarnChangedExtension
		}
	}
	return flags
}

func (r *Registry) verifyDestDir(dest string) types.Flags {
	dir := filepath.Dir(dest)
	info, err := r.fs.Stat(dir)
	if err != nil || !info.IsDir() {
		return types.ErrNoDestDir
	}
	if !r.fs.Access(dir, types.AccessWrite) {
		return types.WarnNoWritePermDestDir
	}
	return 0
}

func readsSource(kind types.Kind) bool {
	switch kind {
	case types.KindCopy, types.KindMove, types.KindRename, types.KindRunExternalFilter, types.KindWriteMetadata:
		return true
	default:
		return false
	}
}

// readsContent reports whether kind needs the source to be a regular file
func readsContent(kind types.Kind) bool {
	switch kind {
	case types.KindCopy, types.KindRunExternalFilter, types.KindWriteMetadata:
		return true
	default:
		return false
	}
}
