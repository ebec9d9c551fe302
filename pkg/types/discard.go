package types

// DiscardCause tells a discard hook why a batch is being torn down without
// success
type DiscardCause int

const (
	// DiscardUser means the user chose to throw pending changes away
	DiscardUser DiscardCause = iota
	// DiscardFailed means the change could not be performed
	DiscardFailed
	// DiscardCancelled means the user stopped a batch that had already
	// modified the disk
	DiscardCancelled
)

// String returns the string representation of the cause
func (c DiscardCause) String() string {
	switch c {
	case DiscardUser:
		return "user"
	case DiscardFailed:
		return "failed"
	case DiscardCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
