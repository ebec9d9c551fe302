package filedata

import (
	"path/filepath"

	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/filesystem"
	"github.com/arthur-debert/photobatch/pkg/logging"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/rs/zerolog"
)

// DefaultSidecarExtensions are used when Options.SidecarExtensions is empty
var DefaultSidecarExtensions = []string{".xmp", ".pp3", ".dop"}

// Options contains configuration for the registry
type Options struct {
	FS                types.FS
	SidecarExtensions []string
	// PendingMetadata reports whether a path has unsaved metadata edits
	PendingMetadata func(path string) bool
	Logger          zerolog.Logger
}

type slot struct {
	gen      uint32
	live     bool
	refs     int
	path     string
	indexed  bool
	parent   Handle
	sidecars []Handle
	change   *types.ChangeInfo
	// dropRef marks a detached sidecar whose former parent reference is
	// dropped once its change is freed
	dropRef bool
}

// Registry owns every FileData entry. It is not safe for concurrent use;
// the engine drives it from a single goroutine.
type Registry struct {
	fs              types.FS
	sidecarExts     []string
	pendingMetadata func(string) bool
	logger          zerolog.Logger

	slots  []slot
	free   []uint32
	byPath map[string]Handle
}

// NewRegistry creates an empty registry
func NewRegistry(opts Options) *Registry {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("filedata")
	}

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}

	exts := opts.SidecarExtensions
	if len(exts) == 0 {
		exts = DefaultSidecarExtensions
	}

	pending := opts.PendingMetadata
	if pending == nil {
		pending = func(string) bool { return false }
	}

	return &Registry{
		fs:              fs,
		sidecarExts:     exts,
		pendingMetadata: pending,
		logger:          logger,
		byPath:          make(map[string]Handle),
	}
}

// FS returns the filesystem the registry verifies against
func (r *Registry) FS() types.FS {
	return r.fs
}

// Canonical returns the canonical form of a path used for identity
func Canonical(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "cannot resolve %s", path)
	}
	return filepath.Clean(abs), nil
}

// Get returns the entry for path, creating it if needed. The caller owns
// one reference on the returned handle.
func (r *Registry) Get(path string) (Handle, error) {
	canonical, err := Canonical(path)
	if err != nil {
		return Handle{}, err
	}

	if h, ok := r.byPath[canonical]; ok {
		s := &r.slots[h.index]
		s.refs++
		return h, nil
	}

	h := r.alloc(canonical)
	r.logger.Trace().Str("path", canonical).Str("handle", h.String()).Msg("FileData created")
	return h, nil
}

func (r *Registry) alloc(path string) Handle {
	var index uint32
	if n := len(r.free); n > 0 {
		index = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.slots = append(r.slots, slot{})
		index = uint32(len(r.slots) - 1)
	}

	s := &r.slots[index]
	s.gen++
	s.live = true
	s.refs = 1
	s.path = path
	s.indexed = true
	s.parent = Handle{}
	s.sidecars = nil
	s.change = nil
	s.dropRef = false

	h := Handle{index: index, gen: s.gen}
	r.byPath[path] = h
	return h
}

func (r *Registry) lookup(h Handle) (*slot, error) {
	if h.IsZero() || int(h.index) >= len(r.slots) {
		return nil, errors.Newf(errors.ErrStaleHandle, "invalid handle %s", h)
	}
	s := &r.slots[h.index]
	if !s.live || s.gen != h.gen {
		return nil, errors.Newf(errors.ErrStaleHandle, "stale handle %s", h)
	}
	return s, nil
}

// Valid reports whether h still refers to a live entry
func (r *Registry) Valid(h Handle) bool {
	_, err := r.lookup(h)
	return err == nil
}

// Ref adds a reference to h
func (r *Registry) Ref(h Handle) (Handle, error) {
	s, err := r.lookup(h)
	if err != nil {
		return Handle{}, err
	}
	s.refs++
	return h, nil
}

// Unref drops a reference. The last reference frees the entry and the
// references it holds on its sidecars.
func (r *Registry) Unref(h Handle) {
	s, err := r.lookup(h)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Unref on invalid handle")
		return
	}
	s.refs--
	if s.refs > 0 {
		return
	}
	r.release(h)
}

func (r *Registry) release(h Handle) {
	s := &r.slots[h.index]
	if s.change != nil {
		r.logger.Warn().
			Str("path", s.path).
			Str("kind", s.change.Kind.String()).
			Msg("FileData freed while still carrying a change")
		s.change = nil
	}

	sidecars := s.sidecars
	s.sidecars = nil
	if !s.parent.IsZero() {
		if p, err := r.lookup(s.parent); err == nil {
			p.sidecars = removeHandle(p.sidecars, h)
		}
	}

	if s.indexed {
		if cur, ok := r.byPath[s.path]; ok && cur == h {
			delete(r.byPath, s.path)
		}
	}

	s.live = false
	s.refs = 0
	s.path = ""
	s.indexed = false
	s.parent = Handle{}
	s.dropRef = false
	r.free = append(r.free, h.index)

	for _, sc := range sidecars {
		if scs, err := r.lookup(sc); err == nil {
			scs.parent = Handle{}
		}
		r.Unref(sc)
	}
}

// Refs returns the current reference count of h, or 0 for a stale handle
func (r *Registry) Refs(h Handle) int {
	s, err := r.lookup(h)
	if err != nil {
		return 0
	}
	return s.refs
}

// Path returns the canonical path of h, or "" for a stale handle
func (r *Registry) Path(h Handle) string {
	s, err := r.lookup(h)
	if err != nil {
		return ""
	}
	return s.path
}

// Lookup returns the live handle for path without taking a reference
func (r *Registry) Lookup(path string) (Handle, bool) {
	canonical, err := Canonical(path)
	if err != nil {
		return Handle{}, false
	}
	h, ok := r.byPath[canonical]
	return h, ok
}

// Len returns the number of live entries
func (r *Registry) Len() int {
	return len(r.slots) - len(r.free)
}

func removeHandle(list []Handle, h Handle) []Handle {
	out := list[:0]
	for _, x := range list {
		if x != h {
			out = append(out, x)
		}
	}
	return out
}
