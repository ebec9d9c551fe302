package filedata

import (
	"path/filepath"
	"strings"
)

// Group returns the entry for path with its sidecars linked. Sidecars are
// siblings named <name><ext> or <stem><ext> for each configured sidecar
// extension. A file that is itself a sidecar is never grouped further.
func (r *Registry) Group(path string) (Handle, error) {
	h, err := r.Get(path)
	if err != nil {
		return Handle{}, err
	}
	r.linkSidecars(h)
	return h, nil
}

func (r *Registry) linkSidecars(h Handle) {
	s := &r.slots[h.index]
	if !s.parent.IsZero() || r.IsSidecarName(s.path) {
		return
	}

	r.pruneSidecars(h)
	for _, candidate := range r.SidecarCandidates(r.slots[h.index].path) {
		r.linkSidecar(h, candidate)
	}
}

// SidecarCandidates returns the sidecar paths a primary at path may own,
// in link order
func (r *Registry) SidecarCandidates(path string) []string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var out []string
	for _, ext := range r.sidecarExts {
		out = append(out, filepath.Join(dir, base+ext))
		if stem != base && stem != "" {
			out = append(out, filepath.Join(dir, stem+ext))
		}
	}
	return out
}

// pruneSidecars drops links to sidecars that are gone from disk or no
// longer carry one of h's sidecar names. Sidecars enrolled in a batch are
// left to that batch.
func (r *Registry) pruneSidecars(h Handle) {
	names := make(map[string]bool)
	for _, c := range r.SidecarCandidates(r.slots[h.index].path) {
		names[c] = true
	}
	for _, sc := range r.Sidecars(h) {
		s := &r.slots[sc.index]
		if s.change != nil {
			continue
		}
		if s.indexed && names[s.path] {
			if _, err := r.fs.Lstat(s.path); err == nil {
				continue
			}
		}
		r.detach(sc)
	}
}

func (r *Registry) linkSidecar(h Handle, candidate string) {
	info, err := r.fs.Lstat(candidate)
	if err != nil || !info.Mode().IsRegular() {
		return
	}

	if existing, ok := r.byPath[candidate]; ok {
		es := &r.slots[existing.index]
		if existing == h || es.parent == h {
			return
		}
		if !es.parent.IsZero() && r.Valid(es.parent) {
			// already owned by another primary with the same stem
			return
		}
	}

	sc, err := r.Get(candidate)
	if err != nil {
		return
	}
	// Get may have grown the slot slice; re-read both slots
	r.slots[sc.index].parent = h
	p := &r.slots[h.index]
	p.sidecars = append(p.sidecars, sc)

	r.logger.Trace().
		Str("path", p.path).
		Str("sidecar", candidate).
		Msg("Sidecar linked")
}

// IsSidecarName reports whether path carries one of the sidecar extensions
func (r *Registry) IsSidecarName(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, sc := range r.sidecarExts {
		if ext == strings.ToLower(sc) {
			return true
		}
	}
	return false
}

// Sidecars returns the sidecars of h in link order
func (r *Registry) Sidecars(h Handle) []Handle {
	s, err := r.lookup(h)
	if err != nil {
		return nil
	}
	out := make([]Handle, len(s.sidecars))
	copy(out, s.sidecars)
	return out
}

// Parent returns the primary owning h, or the zero handle
func (r *Registry) Parent(h Handle) Handle {
	s, err := r.lookup(h)
	if err != nil {
		return Handle{}
	}
	return s.parent
}

// IsSidecar reports whether h is owned by a primary
func (r *Registry) IsSidecar(h Handle) bool {
	return !r.Parent(h).IsZero()
}

// Members returns h followed by its sidecars: the unit a grouped
// operation processes together
func (r *Registry) Members(h Handle) []Handle {
	return append([]Handle{h}, r.Sidecars(h)...)
}

// SidecarDest derives a sidecar's destination from its primary's move.
// A sidecar keeps its suffix; the part matching the primary's old name
// (or stem) is replaced by the primary's new name (or stem).
func SidecarDest(primarySrc, primaryDest, sidecarSrc string) string {
	if primaryDest == "" {
		return ""
	}

	oldBase := filepath.Base(primarySrc)
	newBase := filepath.Base(primaryDest)
	oldStem := strings.TrimSuffix(oldBase, filepath.Ext(oldBase))
	newStem := strings.TrimSuffix(newBase, filepath.Ext(newBase))
	scBase := filepath.Base(sidecarSrc)

	name := scBase
	switch {
	case strings.HasPrefix(scBase, oldBase):
		name = newBase + strings.TrimPrefix(scBase, oldBase)
	case oldStem != "" && strings.HasPrefix(scBase, oldStem):
		name = newStem + strings.TrimPrefix(scBase, oldStem)
	}
	return filepath.Join(filepath.Dir(primaryDest), name)
}
