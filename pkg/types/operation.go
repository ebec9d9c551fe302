package types

// Kind defines the type of file mutation a ChangeInfo describes
type Kind string

const (
	// KindCopy copies a file (and its sidecars) to a destination
	KindCopy Kind = "copy"

	// KindMove moves a file into another directory
	KindMove Kind = "move"

	// KindRename renames a file in place
	KindRename Kind = "rename"

	// KindDelete unlinks a regular file
	KindDelete Kind = "delete"

	// KindDeleteLink unlinks a symbolic link without touching its target
	KindDeleteLink Kind = "delete_link"

	// KindDeleteFolder removes a directory once its content is gone
	KindDeleteFolder Kind = "delete_folder"

	// KindCreateFolder creates a new directory
	KindCreateFolder Kind = "create_folder"

	// KindRenameFolder renames a directory and re-homes its content
	KindRenameFolder Kind = "rename_folder"

	// KindRunExternalFilter runs a user-configured filter that produces a new file
	KindRunExternalFilter Kind = "run_external_filter"

	// KindWriteMetadata flushes pending metadata edits to disk
	KindWriteMetadata Kind = "write_metadata"
)

// AllKinds lists every kind in declaration order
var AllKinds = []Kind{
	KindCopy, KindMove, KindRename, KindDelete, KindDeleteLink,
	KindDeleteFolder, KindCreateFolder, KindRenameFolder,
	KindRunExternalFilter, KindWriteMetadata,
}

// String returns the string form of the kind
func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k is one of the known kinds
func (k Kind) Valid() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

// NeedsDest reports whether the kind requires a destination path
func (k Kind) NeedsDest() bool {
	switch k {
	case KindCopy, KindMove, KindRename, KindCreateFolder, KindRenameFolder, KindRunExternalFilter:
		return true
	default:
		return false
	}
}

// IsDelete reports whether the kind removes something from disk
func (k Kind) IsDelete() bool {
	return k == KindDelete || k == KindDeleteLink || k == KindDeleteFolder
}

// IsFolder reports whether the kind operates on a directory
func (k Kind) IsFolder() bool {
	return k == KindDeleteFolder || k == KindCreateFolder || k == KindRenameFolder
}

// RemovesSource reports whether a successful change makes the source path disappear
func (k Kind) RemovesSource() bool {
	switch k {
	case KindMove, KindRename, KindDelete, KindDeleteLink, KindDeleteFolder, KindRenameFolder:
		return true
	default:
		return false
	}
}

// ChangeInfo is the pending-mutation record attached to a file while it
// is enrolled in a batch. Dest is empty for deletions.
type ChangeInfo struct {
	Kind   Kind
	Source string
	Dest   string
	Flags  Flags
}

// NewChangeInfo creates a ChangeInfo with no validation flags set
func NewChangeInfo(kind Kind, source, dest string) *ChangeInfo {
	return &ChangeInfo{
		Kind:   kind,
		Source: source,
		Dest:   dest,
	}
}
