package validator

import (
	"github.com/arthur-debert/photobatch/pkg/filedata"
	"github.com/arthur-debert/photobatch/pkg/logging"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/rs/zerolog"
)

// Target is the view of a batch the validator needs
type Target interface {
	// Handles returns every enrolled entry in processing order
	Handles() []filedata.Handle
}

// Entry is the verification result for one enrolled file
type Entry struct {
	Handle filedata.Handle
	Kind   types.Kind
	Path   string
	Dest   string
	Flags  types.Flags
}

// Report aggregates the per-file results of a batch
type Report struct {
	Entries []Entry
	Flags   types.Flags
}

// Severity returns the worst classification in the report
func (r Report) Severity() types.Severity {
	return r.Flags.Severity()
}

// OK reports whether nothing was flagged
func (r Report) OK() bool {
	return r.Flags == 0
}

// Fatal returns the entries carrying a fatal bit
func (r Report) Fatal() []Entry {
	return r.filter(func(f types.Flags) bool { return f.HasFatal() })
}

// Warnings returns the entries carrying only warning bits
func (r Report) Warnings() []Entry {
	return r.filter(func(f types.Flags) bool { return !f.HasFatal() && f != 0 })
}

// Flagged returns every entry with at least one bit set
func (r Report) Flagged() []Entry {
	return r.filter(func(f types.Flags) bool { return f != 0 })
}

func (r Report) filter(keep func(types.Flags) bool) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if keep(e.Flags) {
			out = append(out, e)
		}
	}
	return out
}

// Validator verifies batches against a registry
type Validator struct {
	reg    *filedata.Registry
	logger zerolog.Logger
}

// Options contains configuration for the validator
type Options struct {
	Logger zerolog.Logger
}

// New creates a validator for entries of reg
func New(reg *filedata.Registry, opts Options) *Validator {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("validator")
	}
	return &Validator{reg: reg, logger: logger}
}

// Verify checks every member of t. Destinations are counted across the
// batch so one used twice is caught.
func (v *Validator) Verify(t Target) Report {
	handles := t.Handles()
	report := Report{Entries: make([]Entry, 0, len(handles))}
	dests := v.reg.CountDests(handles)

	for _, h := range handles {
		flags := v.reg.Verify(h, dests)
		entry := Entry{
			Handle: h,
			Path:   v.reg.Path(h),
			Flags:  flags,
		}
		if c := v.reg.Change(h); c != nil {
			entry.Kind = c.Kind
			entry.Dest = c.Dest
		}
		report.Entries = append(report.Entries, entry)
		report.Flags |= flags
	}

	v.logger.Debug().
		Int("files", len(handles)).
		Str("severity", report.Severity().String()).
		Str("flags", report.Flags.String()).
		Msg("Batch verified")
	return report
}

// Handles adapts a plain handle list to Target
type Handles []filedata.Handle

// Handles implements Target
func (h Handles) Handles() []filedata.Handle { return h }
