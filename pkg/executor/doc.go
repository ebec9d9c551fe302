// Package executor performs enrolled changes directly on the filesystem.
//
// PerformOne applies the ChangeInfo of a single registry entry: it copies
// bytes and attributes, renames (falling back to copy and delete across
// devices), unlinks, or creates a directory. It never touches the
// registry's identity state; committing a successful change is the
// finalizer's job. One call handles one file so the caller can yield
// between files.
package executor
