package filedata

import (
	"path/filepath"

	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/types"
)

// Change returns the ChangeInfo carried by h, or nil
func (r *Registry) Change(h Handle) *types.ChangeInfo {
	s, err := r.lookup(h)
	if err != nil {
		return nil
	}
	return s.change
}

// Enrolled reports whether h carries a ChangeInfo
func (r *Registry) Enrolled(h Handle) bool {
	return r.Change(h) != nil
}

// NewChange attaches a ChangeInfo to h. It fails without touching the
// existing record when h is already enrolled.
func (r *Registry) NewChange(h Handle, kind types.Kind, dest string) error {
	s, err := r.lookup(h)
	if err != nil {
		return err
	}
	if !kind.Valid() {
		return errors.Newf(errors.ErrInvalidInput, "unknown change kind %q", kind)
	}
	if s.change != nil {
		return errors.Newf(errors.ErrAlreadyEnrolled, "%s is already part of a %s batch", s.path, s.change.Kind).
			WithDetail("path", s.path).
			WithDetail("kind", s.change.Kind.String())
	}

	if dest != "" {
		if dest, err = Canonical(dest); err != nil {
			return err
		}
	}

	s.change = types.NewChangeInfo(kind, s.path, dest)
	r.logger.Debug().
		Str("path", s.path).
		Str("kind", kind.String()).
		Str("dest", dest).
		Msg("Change enrolled")
	return nil
}

// NewGroupChange enrolls h and, when withSidecars is set, each of its
// sidecars with a derived destination. Either every member is enrolled or
// none is.
func (r *Registry) NewGroupChange(h Handle, kind types.Kind, dest string, withSidecars bool) error {
	if err := r.NewChange(h, kind, dest); err != nil {
		return err
	}
	if !withSidecars {
		return nil
	}

	src := r.Path(h)
	var enrolled []Handle
	for _, sc := range r.Sidecars(h) {
		if err := r.NewChange(sc, kind, sidecarDestFor(kind, src, dest, r.Path(sc))); err != nil {
			for _, e := range enrolled {
				r.FreeChange(e)
			}
			r.FreeChange(h)
			return err
		}
		enrolled = append(enrolled, sc)
	}
	return nil
}

func sidecarDestFor(kind types.Kind, primarySrc, primaryDest, sidecarSrc string) string {
	if !kind.NeedsDest() {
		return ""
	}
	return SidecarDest(primarySrc, primaryDest, sidecarSrc)
}

// SetDest replaces the destination of an enrolled entry
func (r *Registry) SetDest(h Handle, dest string) error {
	s, err := r.lookup(h)
	if err != nil {
		return err
	}
	if s.change == nil {
		return errors.Newf(errors.ErrNotEnrolled, "%s is not enrolled", s.path)
	}
	if dest != "" {
		if dest, err = Canonical(dest); err != nil {
			return err
		}
	}
	s.change.Dest = dest
	return nil
}

// SetGroupDest sets the destination of h and re-derives the destination of
// each enrolled sidecar
func (r *Registry) SetGroupDest(h Handle, dest string) error {
	if err := r.SetDest(h, dest); err != nil {
		return err
	}
	change := r.Change(h)
	for _, sc := range r.Sidecars(h) {
		if !r.Enrolled(sc) {
			continue
		}
		if err := r.SetDest(sc, sidecarDestFor(change.Kind, change.Source, change.Dest, r.Path(sc))); err != nil {
			return err
		}
	}
	return nil
}

// SetChangeFlags replaces the validation flags of an enrolled entry
func (r *Registry) SetChangeFlags(h Handle, flags types.Flags) error {
	s, err := r.lookup(h)
	if err != nil {
		return err
	}
	if s.change == nil {
		return errors.Newf(errors.ErrNotEnrolled, "%s is not enrolled", s.path)
	}
	s.change.Flags = flags
	return nil
}

// Apply commits the outcome of a performed change to the entry's identity.
// Moves re-key the entry under its destination; deletions drop it from the
// path index. A sidecar that no longer sits next to its primary is
// detached from it. The ChangeInfo stays attached until FreeChange.
func (r *Registry) Apply(h Handle) error {
	s, err := r.lookup(h)
	if err != nil {
		return err
	}
	if s.change == nil {
		return errors.Newf(errors.ErrNotEnrolled, "%s is not enrolled", s.path)
	}
	kind := s.change.Kind

	switch kind {
	case types.KindMove, types.KindRename, types.KindRenameFolder:
		if s.change.Dest == "" || s.change.Dest == s.path {
			return nil
		}
		r.unindex(h)
		if other, ok := r.byPath[s.change.Dest]; ok && other != h {
			// the entry that was overwritten no longer names a file
			r.slots[other.index].indexed = false
			delete(r.byPath, s.change.Dest)
			r.detach(other)
		}
		s.path = s.change.Dest
		s.indexed = true
		r.byPath[s.path] = h

		if !s.parent.IsZero() && !r.besideParent(h) {
			r.detach(h)
		}
		// enrolled sidecars are checked when their own change is applied
		for _, sc := range r.Sidecars(h) {
			if !r.Enrolled(sc) && !r.besideParent(sc) {
				r.detach(sc)
			}
		}
	case types.KindDelete, types.KindDeleteLink, types.KindDeleteFolder:
		r.unindex(h)
		r.detach(h)
	}

	r.logger.Debug().
		Str("handle", h.String()).
		Str("path", r.Path(h)).
		Str("kind", kind.String()).
		Msg("Change applied")
	return nil
}

// besideParent reports whether sidecar h still lives in its primary's
// directory
func (r *Registry) besideParent(h Handle) bool {
	s := &r.slots[h.index]
	p, err := r.lookup(s.parent)
	if err != nil {
		return false
	}
	return filepath.Dir(s.path) == filepath.Dir(p.path)
}

// detach unlinks sidecar h from its primary and drops the reference the
// primary held on it. While h carries a change the reference is dropped
// by FreeChange.
func (r *Registry) detach(h Handle) {
	s, err := r.lookup(h)
	if err != nil || s.parent.IsZero() {
		return
	}
	if p, err := r.lookup(s.parent); err == nil {
		p.sidecars = removeHandle(p.sidecars, h)
	}
	r.logger.Trace().Str("sidecar", s.path).Msg("Sidecar detached")
	s.parent = Handle{}
	if s.change != nil {
		s.dropRef = true
		return
	}
	r.Unref(h)
}

func (r *Registry) unindex(h Handle) {
	s := &r.slots[h.index]
	if !s.indexed {
		return
	}
	if cur, ok := r.byPath[s.path]; ok && cur == h {
		delete(r.byPath, s.path)
	}
	s.indexed = false
}

// FreeChange detaches the ChangeInfo of h without applying it
func (r *Registry) FreeChange(h Handle) {
	s, err := r.lookup(h)
	if err != nil {
		return
	}
	s.change = nil
	if s.dropRef {
		s.dropRef = false
		r.Unref(h)
	}
}
