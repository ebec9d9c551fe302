package fileops

import (
	"github.com/arthur-debert/photobatch/pkg/executor"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/arthur-debert/photobatch/pkg/validator"
)

// Failure describes a file that could not be processed while the batch
// was running
type Failure struct {
	Result executor.Result
	// Remaining is the number of file groups still waiting
	Remaining int
}

// Confirmer is the user-facing side of a batch. Every method is called on
// the loop goroutine and may block while the user decides.
type Confirmer interface {
	// ChooseDestination asks for the destination directory of a copy,
	// move or filter batch. Returning false cancels the batch.
	ChooseDestination(b *Batch) (string, bool)

	// ReportFatal shows a report that blocks the batch. DecisionRevise
	// returns the batch to its start to pick another destination; any
	// other answer cancels.
	ReportFatal(b *Batch, report validator.Report) types.Decision

	// ConfirmWarnings asks whether to go on despite warnings. It is also
	// called with a clean report for kinds configured to always confirm.
	ConfirmWarnings(b *Batch, report validator.Report) types.Decision

	// ResumeAfterError asks whether to continue with the remaining files
	// after one failed.
	ResumeAfterError(b *Batch, failure Failure) types.Decision
}

// Unattended answers without asking: it never supplies a destination,
// cancels on fatal reports, and continues past warnings and failures
type Unattended struct{}

// ChooseDestination implements Confirmer
func (Unattended) ChooseDestination(*Batch) (string, bool) { return "", false }

// ReportFatal implements Confirmer
func (Unattended) ReportFatal(*Batch, validator.Report) types.Decision {
	return types.DecisionCancel
}

// ConfirmWarnings implements Confirmer
func (Unattended) ConfirmWarnings(*Batch, validator.Report) types.Decision {
	return types.DecisionContinue
}

// ResumeAfterError implements Confirmer
func (Unattended) ResumeAfterError(*Batch, Failure) types.Decision {
	return types.DecisionContinue
}
