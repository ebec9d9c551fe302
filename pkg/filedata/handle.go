package filedata

import "fmt"

// Handle identifies one entry of a Registry. The zero Handle is never valid.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero handle
func (h Handle) IsZero() bool {
	return h.gen == 0
}

// String returns a debug representation of the handle
func (h Handle) String() string {
	if h.IsZero() {
		return "fd(nil)"
	}
	return fmt.Sprintf("fd(%d#%d)", h.index, h.gen)
}
