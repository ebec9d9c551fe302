package fileops

// Phase is the state of a batch
type Phase int

const (
	// PhaseStart enrolls the targets
	PhaseStart Phase = iota
	// PhaseIntermediate waits for a destination
	PhaseIntermediate
	// PhaseEntering validates the batch
	PhaseEntering
	// PhaseChecked performs the changes
	PhaseChecked
	// PhaseDone means the batch completed
	PhaseDone
	// PhaseCancel means the batch was abandoned without touching anything
	PhaseCancel
	// PhaseDiscard means the batch ended through its discard path
	PhaseDiscard
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseIntermediate:
		return "intermediate"
	case PhaseEntering:
		return "entering"
	case PhaseChecked:
		return "checked"
	case PhaseDone:
		return "done"
	case PhaseCancel:
		return "cancel"
	case PhaseDiscard:
		return "discard"
	default:
		return "unknown"
	}
}

// Terminal reports whether the batch is over
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseCancel || p == PhaseDiscard
}
