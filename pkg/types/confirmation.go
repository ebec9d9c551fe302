package types

// Decision is a user's answer to a confirmation collaborator
type Decision int

const (
	// DecisionContinue proceeds with the batch (or the remaining files)
	DecisionContinue Decision = iota
	// DecisionCancel stops the batch
	DecisionCancel
	// DecisionRevise returns the batch to its start so the request can be amended
	DecisionRevise
	// DecisionDiscard ends the batch through the discard path
	DecisionDiscard
)

// String returns the string representation of the decision
func (d Decision) String() string {
	switch d {
	case DecisionContinue:
		return "continue"
	case DecisionCancel:
		return "cancel"
	case DecisionRevise:
		return "revise"
	case DecisionDiscard:
		return "discard"
	default:
		return "unknown"
	}
}

// ConfirmationRequest describes something the user must approve
type ConfirmationRequest struct {
	// ID is a unique identifier for this confirmation within the batch
	ID string

	// Operation is the batch kind this confirmation relates to
	Operation Kind

	// Title is a brief, user-friendly title describing what needs confirmation
	Title string

	// Description provides detailed information about what will happen
	Description string

	// Items lists the affected files
	Items []string

	// Default is the answer used when the user just presses enter
	Default bool
}
