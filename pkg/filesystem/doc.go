// Package filesystem provides types.FS implementations: the real OS
// filesystem used by the engine, and an afero-backed one used for
// in-memory tests.
package filesystem
