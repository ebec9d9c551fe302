// Package confirmations implements the batch engine's user dialogs for
// the console.
package confirmations

import (
	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/pterm/pterm"
)

// Prompter asks the user questions
type Prompter interface {
	Confirm(question string, def bool) (bool, error)
	Input(question string) (string, error)
	Select(question string, options []string) (string, error)
}

// PtermPrompter asks through pterm's interactive printers. The printers
// read the keyboard in raw mode, so Ctrl-C arrives as a key rather than a
// signal; it is returned as an ErrInterrupted error instead of exiting.
type PtermPrompter struct{}

type interrupt struct {
	hit bool
}

func (i *interrupt) set() { i.hit = true }

func (i *interrupt) err(question string) error {
	if !i.hit {
		return nil
	}
	return errors.Newf(errors.ErrInterrupted, "interrupted at %q", question)
}

// Confirm asks a yes/no question
func (PtermPrompter) Confirm(question string, def bool) (bool, error) {
	var in interrupt
	ok, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(def).
		WithOnInterruptFunc(in.set).
		Show(question)
	if ierr := in.err(question); ierr != nil {
		return false, ierr
	}
	return ok, err
}

// Input asks for a line of text
func (PtermPrompter) Input(question string) (string, error) {
	var in interrupt
	answer, err := pterm.DefaultInteractiveTextInput.
		WithOnInterruptFunc(in.set).
		Show(question)
	if ierr := in.err(question); ierr != nil {
		return "", ierr
	}
	return answer, err
}

// Select asks the user to pick one of options. The first option is the
// default.
func (PtermPrompter) Select(question string, options []string) (string, error) {
	var in interrupt
	choice, err := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithDefaultOption(options[0]).
		WithOnInterruptFunc(in.set).
		Show(question)
	if ierr := in.err(question); ierr != nil {
		return "", ierr
	}
	return choice, err
}
