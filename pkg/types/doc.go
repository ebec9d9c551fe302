// Package types defines the leaf data model shared by the batch engine:
// the kind of a pending change, the validation flag set, the ChangeInfo
// record attached to a file while it takes part in a batch, the user
// decisions a confirmation collaborator can return, and the filesystem
// interface every component performs I/O through.
package types
