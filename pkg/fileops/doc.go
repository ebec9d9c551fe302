// Package fileops runs batch file operations.
//
// A Batch is one user request: copy, move or rename a set of files, delete
// files or a whole directory tree, create or rename a folder, flush queued
// metadata, or run an external filter. Every batch walks the same phases:
//
//	START -> [INTERMEDIATE] -> ENTERING -> CHECKED -> DONE | CANCEL | DISCARD
//
// START enrolls every target in the file registry. INTERMEDIATE asks the
// Confirmer for a destination when the request did not carry one. ENTERING
// validates the whole batch before anything is touched; a fatal report
// stops the batch, warnings need confirmation. CHECKED performs the
// changes one file group per loop turn, either through the internal
// executor or through a configured external command. The finalizer then
// runs the batch's hooks, applies or frees every change and calls the
// completion callback exactly once.
//
// Everything happens on the engine's loop goroutine. Entry functions only
// schedule the batch; the caller drives it by running the loop.
package fileops
