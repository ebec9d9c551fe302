package scanner

import (
	"path/filepath"

	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/filedata"
	"github.com/arthur-debert/photobatch/pkg/types"
)

// Enrolled is the content of a directory operation. Content lists file
// group primaries first, then subdirectories deepest first. Root is the
// directory itself and is always processed last.
type Enrolled struct {
	Content []filedata.Handle
	Root    filedata.Handle
}

// Enroll scans dir and enrolls every descendant with its own change of the
// given kind before enrolling dir itself. For rename-folder, dest is the new
// directory path and every descendant is re-homed under it. Files are
// grouped with their sidecars. If anything fails, every record enrolled so
// far is freed and the error is returned: no partial tree survives.
func (s *Scanner) Enroll(reg *filedata.Registry, dir string, kind types.Kind, dest string, maxDepth int) (*Enrolled, error) {
	root, err := filedata.Canonical(dir)
	if err != nil {
		return nil, err
	}
	if dest != "" {
		if dest, err = filedata.Canonical(dest); err != nil {
			return nil, err
		}
	}

	// the whole tree is read before anything is enrolled
	tree, err := s.Scan(root, maxDepth)
	if err != nil {
		return nil, err
	}

	e := &enroller{reg: reg, kind: kind, root: root, dest: dest, claimed: make(map[filedata.Handle]bool)}

	for _, f := range tree.Files {
		if reg.IsSidecarName(f) {
			continue
		}
		if err := e.group(f); err != nil {
			return nil, e.rollback(err)
		}
	}
	// sidecars nobody claimed are processed on their own
	for _, f := range tree.Files {
		if !reg.IsSidecarName(f) {
			continue
		}
		if h, ok := reg.Lookup(f); ok && e.claimed[h] {
			continue
		}
		if err := e.single(f); err != nil {
			return nil, e.rollback(err)
		}
	}
	for _, d := range tree.Dirs {
		if err := e.single(d); err != nil {
			return nil, e.rollback(err)
		}
	}

	rootHandle, err := reg.Get(root)
	if err != nil {
		return nil, e.rollback(err)
	}
	if err := reg.NewChange(rootHandle, kind, dest); err != nil {
		reg.Unref(rootHandle)
		return nil, e.rollback(err)
	}

	s.logger.Debug().
		Str("dir", root).
		Str("kind", kind.String()).
		Int("content", len(e.enrolled)).
		Msg("Directory content enrolled")

	return &Enrolled{Content: e.enrolled, Root: rootHandle}, nil
}

type enroller struct {
	reg      *filedata.Registry
	kind     types.Kind
	root     string
	dest     string
	enrolled []filedata.Handle
	claimed  map[filedata.Handle]bool
}

func (e *enroller) destFor(path string) string {
	if e.dest == "" {
		return ""
	}
	rel, err := filepath.Rel(e.root, path)
	if err != nil {
		return ""
	}
	return filepath.Join(e.dest, rel)
}

func (e *enroller) group(path string) error {
	h, err := e.reg.Group(path)
	if err != nil {
		return err
	}
	if err := e.reg.NewGroupChange(h, e.kind, e.destFor(path), true); err != nil {
		e.reg.Unref(h)
		return err
	}
	for _, sc := range e.reg.Sidecars(h) {
		e.claimed[sc] = true
	}
	e.enrolled = append(e.enrolled, h)
	return nil
}

func (e *enroller) single(path string) error {
	h, err := e.reg.Get(path)
	if err != nil {
		return err
	}
	if err := e.reg.NewChange(h, e.kind, e.destFor(path)); err != nil {
		e.reg.Unref(h)
		return err
	}
	e.enrolled = append(e.enrolled, h)
	return nil
}

func (e *enroller) rollback(cause error) error {
	for _, h := range e.enrolled {
		for _, m := range e.reg.Members(h) {
			e.reg.FreeChange(m)
		}
		e.reg.Unref(h)
	}
	e.enrolled = nil
	if errors.GetErrorCode(cause) == errors.ErrUnknown {
		return errors.Wrap(cause, errors.ErrInternal, "enrolling directory content failed")
	}
	return cause
}

// Release frees every change in e and drops the references it holds
func (en *Enrolled) Release(reg *filedata.Registry) {
	all := make([]filedata.Handle, 0, len(en.Content)+1)
	all = append(all, en.Content...)
	all = append(all, en.Root)
	for _, h := range all {
		for _, m := range reg.Members(h) {
			reg.FreeChange(m)
		}
		reg.Unref(h)
	}
}
