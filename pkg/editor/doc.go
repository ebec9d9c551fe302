// Package editor resolves user-configured external commands ("editors") and
// runs them on behalf of a batch.
//
// A Descriptor pairs a key with a shell template. The template decides how
// files are passed: %f runs the command once per file, %F once with the
// whole list. %d expands to the destination, %p to the directory of the
// first file and %% to a literal percent sign.
//
// The Executor has two modes. RunBlocking waits for every invocation before
// returning. Start runs invocations one at a time on a loop.Loop and reports
// each finished invocation to a step function, which answers Continue, Skip
// or Suspend. A suspended Task waits for an explicit Resume or Skip.
//
// Results are reported as an Outcome: OperationalFlags describe how the
// command runs, Failure bits describe what went wrong.
package editor
