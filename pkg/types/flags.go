package types

import "strings"

// Flags accumulates validation results for one ChangeInfo. The low half
// holds warnings a user may confirm past, the high half holds fatal bits.
type Flags uint32

// Warning bits
const (
	WarnDestExists Flags = 1 << iota
	WarnChangedExtension
	WarnNoExtension
	WarnUnsavedMetadata
	WarnNoWritePermDestDir
	WarnNoWritePerm
	WarnSame
)

// Fatal bits
const (
	ErrNoReadPerm Flags = 1 << (iota + 16)
	ErrNoSource
	ErrDuplicateDest
	ErrNoDestDir
	ErrDestIsDir
	ErrNoWritePermDir
	ErrAlreadyExists
	ErrNoDest
	ErrDepthExceeded
	ErrGeneric
	ErrSourceIsDir
)

const (
	warningMask Flags = 0x0000ffff
	fatalMask   Flags = 0xffff0000
)

// Severity classifies a flag set
type Severity int

const (
	// SeverityNone means nothing was flagged
	SeverityNone Severity = iota
	// SeverityWarning means only confirmable warnings were flagged
	SeverityWarning
	// SeverityFatal means at least one fatal bit is set
	SeverityFatal
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "ok"
	case SeverityWarning:
		return "warning"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Warnings returns only the warning bits
func (f Flags) Warnings() Flags { return f & warningMask }

// Fatal returns only the fatal bits
func (f Flags) Fatal() Flags { return f & fatalMask }

// HasFatal reports whether any fatal bit is set
func (f Flags) HasFatal() bool { return f.Fatal() != 0 }

// Has reports whether every bit of other is set in f
func (f Flags) Has(other Flags) bool { return other != 0 && f&other == other }

// Severity returns the worst classification present in f
func (f Flags) Severity() Severity {
	switch {
	case f.HasFatal():
		return SeverityFatal
	case f.Warnings() != 0:
		return SeverityWarning
	default:
		return SeverityNone
	}
}

var flagDescriptions = []struct {
	flag Flags
	desc string
}{
	{WarnDestExists, "destination already exists and will be overwritten"},
	{WarnChangedExtension, "file extension changed"},
	{WarnNoExtension, "new name has no extension"},
	{WarnUnsavedMetadata, "file has unsaved metadata changes"},
	{WarnNoWritePermDestDir, "no write permission on destination directory"},
	{WarnNoWritePerm, "file is not writable"},
	{WarnSame, "source and destination are the same"},
	{ErrNoReadPerm, "no read permission"},
	{ErrNoSource, "source does not exist"},
	{ErrDuplicateDest, "destination is used twice in this batch"},
	{ErrNoDestDir, "destination directory does not exist"},
	{ErrDestIsDir, "destination is a directory"},
	{ErrNoWritePermDir, "no write permission on source directory"},
	{ErrAlreadyExists, "already exists"},
	{ErrNoDest, "no destination given"},
	{ErrDepthExceeded, "directory tree is nested too deeply"},
	{ErrGeneric, "cannot be processed"},
	{ErrSourceIsDir, "source is a directory"},
}

// Describe returns a human readable description for every set bit,
// fatal bits first
func (f Flags) Describe() []string {
	var fatal, warn []string
	for _, d := range flagDescriptions {
		if f&d.flag == 0 {
			continue
		}
		if d.flag&fatalMask != 0 {
			fatal = append(fatal, d.desc)
		} else {
			warn = append(warn, d.desc)
		}
	}
	return append(fatal, warn...)
}

// String joins the descriptions of the set bits
func (f Flags) String() string {
	if f == 0 {
		return "ok"
	}
	return strings.Join(f.Describe(), "; ")
}
