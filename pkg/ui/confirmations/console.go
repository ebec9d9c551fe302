package confirmations

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/fileops"
	"github.com/arthur-debert/photobatch/pkg/logging"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/arthur-debert/photobatch/pkg/ui/report"
	"github.com/arthur-debert/photobatch/pkg/validator"
	"github.com/rs/zerolog"
)

const (
	optionContinue = "Continue"
	optionCancel   = "Cancel"
	optionDiscard  = "Discard pending changes"
	optionRevise   = "Choose another destination"
)

// Console asks the user on the terminal
type Console struct {
	prompt   Prompter
	renderer *report.Renderer
	logger   zerolog.Logger
}

// NewConsole creates a console confirmer. Reports are written to w.
func NewConsole(prompt Prompter, w io.Writer, format report.Format) *Console {
	if prompt == nil {
		prompt = PtermPrompter{}
	}
	return &Console{
		prompt:   prompt,
		renderer: report.New(w, format),
		logger:   logging.GetLogger("confirmations"),
	}
}

// ChooseDestination asks for the target directory
func (c *Console) ChooseDestination(b *fileops.Batch) (string, bool) {
	question := fmt.Sprintf("%s to which directory?", report.Title(b.Kind(), len(b.Paths())))
	answer, err := c.prompt.Input(question)
	if c.failed(err) {
		return "", false
	}
	answer = strings.TrimSpace(answer)
	return answer, answer != ""
}

// ReportFatal shows the blocking problems. Operations with a chosen
// destination may pick another one.
func (c *Console) ReportFatal(b *fileops.Batch, rep validator.Report) types.Decision {
	c.show(b, rep)
	if !revisable(b.Kind()) {
		return types.DecisionCancel
	}
	choice, err := c.prompt.Select("The batch cannot run as requested", []string{optionRevise, optionCancel})
	if c.failed(err) || choice != optionRevise {
		return types.DecisionCancel
	}
	return types.DecisionRevise
}

// ConfirmWarnings asks whether to go ahead. Batches writing metadata may
// also drop their pending edits.
func (c *Console) ConfirmWarnings(b *fileops.Batch, rep validator.Report) types.Decision {
	if rep.OK() {
		ok, err := c.prompt.Confirm(report.Title(b.Kind(), len(rep.Entries))+"?", false)
		if c.failed(err) || !ok {
			return types.DecisionCancel
		}
		return types.DecisionContinue
	}

	c.show(b, rep)
	options := []string{optionCancel, optionContinue}
	if b.Kind() == types.KindWriteMetadata {
		options = append(options, optionDiscard)
	}
	choice, err := c.prompt.Select("Go ahead anyway?", options)
	if c.failed(err) {
		return types.DecisionCancel
	}
	switch choice {
	case optionContinue:
		return types.DecisionContinue
	case optionDiscard:
		return types.DecisionDiscard
	default:
		return types.DecisionCancel
	}
}

// ResumeAfterError reports a failed file and asks whether to carry on
func (c *Console) ResumeAfterError(_ *fileops.Batch, f fileops.Failure) types.Decision {
	if err := c.renderer.Failure(f.Result); err != nil {
		c.logger.Warn().Err(err).Msg("Cannot render failure")
	}
	question := fmt.Sprintf("Continue with the remaining %d file(s)?", f.Remaining)
	ok, err := c.prompt.Confirm(question, true)
	if c.failed(err) || !ok {
		return types.DecisionCancel
	}
	return types.DecisionContinue
}

// failed reports whether a prompt returned an error. Any prompt error,
// Ctrl-C included, cancels the batch.
func (c *Console) failed(err error) bool {
	if err == nil {
		return false
	}
	if errors.IsErrorCode(err, errors.ErrInterrupted) {
		c.logger.Info().Err(err).Msg("Prompt interrupted, cancelling batch")
	} else {
		c.logger.Warn().Err(err).Msg("Prompt failed, cancelling batch")
	}
	return true
}

func (c *Console) show(b *fileops.Batch, rep validator.Report) {
	if err := c.renderer.Validation(b.Kind(), rep); err != nil {
		c.logger.Warn().Err(err).Msg("Cannot render validation report")
	}
}

func revisable(kind types.Kind) bool {
	switch kind {
	case types.KindCopy, types.KindMove, types.KindRunExternalFilter:
		return true
	default:
		return false
	}
}
