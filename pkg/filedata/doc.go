// Package filedata is the file identity collaborator of the batch engine.
//
// Every path the engine touches is represented by a Handle into a
// Registry. The registry is a slot map: a Handle is an index plus a
// generation counter, so a handle that outlives the entry it pointed to
// is detected at lookup time instead of aliasing whatever reuses the slot.
// Entries are deduplicated by canonical path and reference counted.
//
// A primary file may own sidecars (for example raw.nef owns raw.nef.xmp).
// The primary holds one reference on each sidecar; the sidecar only keeps
// an index back to its primary, so the graph never forms an ownership
// cycle.
//
// While a file takes part in a batch it carries exactly one
// types.ChangeInfo. Enrolling a file that already carries one fails.
package filedata
