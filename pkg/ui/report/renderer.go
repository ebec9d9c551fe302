package report

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/photobatch/pkg/executor"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/arthur-debert/photobatch/pkg/validator"
	"github.com/charmbracelet/glamour"
)

// Summary describes a finished batch
type Summary struct {
	Kind    types.Kind
	Phase   string
	Success bool
	Dest    string
	Results []executor.Result
	Err     error
}

// Counts returns the number of succeeded and failed results
func (s Summary) Counts() (succeeded, failed int) {
	for _, r := range s.Results {
		if r.Success {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// Renderer writes reports to an output
type Renderer struct {
	w      io.Writer
	format Format
	width  int
}

// New creates a renderer. FormatAuto is resolved against w when it is a
// file, and falls back to text otherwise.
func New(w io.Writer, format Format) *Renderer {
	if format == FormatAuto {
		format = FormatText
		if f, ok := w.(*os.File); ok {
			format = DetectFormat(f)
		}
	}
	return &Renderer{w: w, format: format}
}

// WithWidth sets the word wrap width of terminal output
func (r *Renderer) WithWidth(width int) *Renderer {
	r.width = width
	return r
}

// Format returns the resolved output format
func (r *Renderer) Format() Format { return r.format }

// Validation renders a validation report
func (r *Renderer) Validation(kind types.Kind, rep validator.Report) error {
	return r.markdown(ValidationMarkdown(kind, rep))
}

// Failure renders a single failed result
func (r *Renderer) Failure(res executor.Result) error {
	return r.markdown(FailureMarkdown([]executor.Result{res}))
}

// Summary renders the outcome of a finished batch
func (r *Renderer) Summary(s Summary) error {
	succeeded, failed := s.Counts()

	status := fmt.Sprintf("%s: %s", Title(s.Kind, len(s.Results)), s.Phase)
	detail := fmt.Sprintf("%d done, %d failed", succeeded, failed)
	if s.Dest != "" {
		detail += ", destination " + s.Dest
	}

	if r.format == FormatTerminal {
		style := successStyle
		switch {
		case !s.Success && succeeded > 0:
			style = warningStyle
		case !s.Success:
			style = errorStyle
		}
		status = style.Render(status)
		detail = mutedStyle.Render(detail)
	}
	if _, err := fmt.Fprintf(r.w, "%s (%s)\n", status, detail); err != nil {
		return err
	}

	if failed > 0 {
		return r.markdown(FailureMarkdown(s.Results))
	}
	return nil
}

// Error renders an error line
func (r *Renderer) Error(err error) error {
	msg := "Error: " + err.Error()
	if r.format == FormatTerminal {
		msg = errorStyle.Render(msg)
	}
	_, werr := fmt.Fprintln(r.w, msg)
	return werr
}

func (r *Renderer) markdown(content string) error {
	if content == "" {
		return nil
	}
	if r.format == FormatTerminal {
		content = render(content, r.width)
	}
	_, err := io.WriteString(r.w, content)
	return err
}

// render converts markdown for the terminal, falling back to the source
// on renderer errors
func render(content string, width int) string {
	options := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		options = append(options, glamour.WithWordWrap(width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
