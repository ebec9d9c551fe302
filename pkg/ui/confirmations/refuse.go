package confirmations

import (
	"github.com/arthur-debert/photobatch/pkg/fileops"
	"github.com/arthur-debert/photobatch/pkg/logging"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/arthur-debert/photobatch/pkg/validator"
	"github.com/rs/zerolog"
)

// Refuse answers every question with no. It stands in for the console
// when there is no terminal to ask on.
type Refuse struct {
	logger zerolog.Logger
}

// NewRefuse creates a Refuse confirmer
func NewRefuse() *Refuse {
	return &Refuse{logger: logging.GetLogger("confirmations")}
}

// ChooseDestination never picks a destination
func (r *Refuse) ChooseDestination(b *fileops.Batch) (string, bool) {
	r.logger.Warn().Str("kind", b.Kind().String()).Msg("No destination given and no terminal to ask on")
	return "", false
}

// ReportFatal cancels
func (r *Refuse) ReportFatal(b *fileops.Batch, rep validator.Report) types.Decision {
	for _, e := range rep.Fatal() {
		r.logger.Error().Str("path", e.Path).Str("problem", e.Flags.String()).Msg("Cannot process file")
	}
	return types.DecisionCancel
}

// ConfirmWarnings cancels, since nobody confirmed
func (r *Refuse) ConfirmWarnings(b *fileops.Batch, rep validator.Report) types.Decision {
	r.logger.Warn().
		Str("kind", b.Kind().String()).
		Int("warnings", len(rep.Warnings())).
		Msg("Confirmation needed; rerun with --yes to proceed")
	return types.DecisionCancel
}

// ResumeAfterError stops the batch
func (r *Refuse) ResumeAfterError(_ *fileops.Batch, f fileops.Failure) types.Decision {
	r.logger.Error().Err(f.Result.Error).Str("path", f.Result.Source).Msg("File failed, stopping")
	return types.DecisionCancel
}
