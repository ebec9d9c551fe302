// Package metadata keeps unsaved metadata edits and writes them to XMP
// sidecars.
//
// Edits are queued per file in a Queue. A write-metadata batch flushes a
// file's edits through the Writer; the batch's finalize hook then drops
// the file from the queue, while its discard hook keeps the edits unless
// the user explicitly chose to throw them away.
package metadata
