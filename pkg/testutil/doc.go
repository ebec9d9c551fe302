// Package testutil provides helpers shared by the photobatch test suites.
//
// Key components:
//   - FileTree / WriteTree: declarative directory layouts for any types.FS
//   - Snapshot: a flat picture of a tree, used to assert that a batch left
//     the disk untouched
//   - FaultFS: wraps a types.FS and injects errors per operation and path
//
// Most engine tests run against filesystem.NewMemory(). Tests that need
// real rename/permission semantics use t.TempDir() with filesystem.NewOS().
package testutil
