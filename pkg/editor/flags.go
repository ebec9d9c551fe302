package editor

import "strings"

// OperationalFlags describe how a descriptor runs
type OperationalFlags uint16

const (
	// FlagForEach runs one invocation per file (%f)
	FlagForEach OperationalFlags = 1 << iota
	// FlagFileList passes every file to a single invocation (%F)
	FlagFileList
	// FlagDest substitutes a destination (%d)
	FlagDest
	// FlagWorkDir runs in the directory of the first file (%p)
	FlagWorkDir
	// FlagTerminal attaches the command to the controlling terminal
	FlagTerminal
	// FlagKeepFullscreen asks a viewer to stay fullscreen while it runs
	FlagKeepFullscreen
	// FlagBlocking makes the caller wait for the command
	FlagBlocking
	// FlagFilter marks a command that produces a new file at a destination
	FlagFilter
)

// Has reports whether every bit of other is set
func (f OperationalFlags) Has(other OperationalFlags) bool {
	return other != 0 && f&other == other
}

// Failure classifies what went wrong while preparing or running a command
type Failure uint16

const (
	// FailEmpty means the template is empty
	FailEmpty Failure = 1 << iota
	// FailSyntax means the template has an unknown or dangling placeholder
	FailSyntax
	// FailIncompatible means the template uses both %f and %F
	FailIncompatible
	// FailNoFile means no file matched the descriptor's patterns
	FailNoFile
	// FailCantExec means the command could not be started
	FailCantExec
	// FailStatus means the command exited with a non-zero status
	FailStatus
	// FailSkipped means some files were never run
	FailSkipped
)

var failureNames = []struct {
	bit  Failure
	name string
}{
	{FailEmpty, "empty command"},
	{FailSyntax, "syntax error"},
	{FailIncompatible, "incompatible placeholders"},
	{FailNoFile, "no matching file"},
	{FailCantExec, "cannot execute"},
	{FailStatus, "non-zero exit status"},
	{FailSkipped, "some files skipped"},
}

// Has reports whether every bit of other is set
func (f Failure) Has(other Failure) bool {
	return other != 0 && f&other == other
}

// String joins the names of the set bits
func (f Failure) String() string {
	if f == 0 {
		return "ok"
	}
	var parts []string
	for _, n := range failureNames {
		if f&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ", ")
}

// Status is the tagged classification of an Outcome
type Status int

const (
	// StatusOk means every file ran cleanly
	StatusOk Status = iota
	// StatusWarning means the only problem is that files were skipped
	StatusWarning
	// StatusFatal means at least one real failure happened
	StatusFatal
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusWarning:
		return "warning"
	default:
		return "fatal"
	}
}

// Outcome is the result of running a descriptor over a set of files
type Outcome struct {
	Flags    OperationalFlags
	Failures Failure

	// Done lists files whose invocation exited cleanly
	Done []string
	// Failed lists files whose invocation failed
	Failed []string
	// Skipped lists files that were never run
	Skipped []string

	// Err is the first error encountered
	Err error
}

// Status classifies the outcome
func (o Outcome) Status() Status {
	switch {
	case o.Fatal():
		return StatusFatal
	case o.Failures.Has(FailSkipped):
		return StatusWarning
	default:
		return StatusOk
	}
}

// Ok reports whether nothing went wrong
func (o Outcome) Ok() bool {
	return o.Failures == 0
}

// Fatal reports whether a failure other than skipping happened
func (o Outcome) Fatal() bool {
	return o.Failures&^FailSkipped != 0
}

// ErrorsButSkipped reports real failures, ignoring the skip bit. Callers
// offer to resume when this is true; a pure skip is a partial success.
func (o Outcome) ErrorsButSkipped() bool {
	return o.Fatal()
}

// SkippedOnly reports whether skipping is the only failure
func (o Outcome) SkippedOnly() bool {
	return o.Failures == FailSkipped
}

func (o *Outcome) fail(f Failure, err error) {
	o.Failures |= f
	if o.Err == nil && err != nil {
		o.Err = err
	}
}
