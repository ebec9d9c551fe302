// Package validator computes the conflict and permission report of a batch
// before anything on disk is touched.
//
// The validator walks every enrolled member of a batch (targets, their
// sidecars, and for directory operations the scanned content plus the
// directory itself), asks the file registry to verify each one against the
// rest, and folds the per-file flags into a single Report. A report with a
// fatal bit aborts the batch; a report with only warning bits needs the
// caller's confirmation.
package validator
