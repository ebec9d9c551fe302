package report

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/photobatch/pkg/executor"
	"github.com/arthur-debert/photobatch/pkg/types"
	"github.com/arthur-debert/photobatch/pkg/validator"
)

// Title returns a short human description of an operation
func Title(kind types.Kind, files int) string {
	verb := strings.ReplaceAll(kind.String(), "_", " ")
	if verb == "" {
		verb = "process"
	}
	verb = strings.ToUpper(verb[:1]) + verb[1:]
	if files == 1 {
		return fmt.Sprintf("%s 1 file", verb)
	}
	return fmt.Sprintf("%s %d files", verb, files)
}

// ValidationMarkdown lists the flagged entries of rep, fatal problems
// first
func ValidationMarkdown(kind types.Kind, rep validator.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", Title(kind, len(rep.Entries)))

	if rep.OK() {
		b.WriteString("No problems found.\n")
		return b.String()
	}

	section := func(title string, entries []validator.Entry) {
		if len(entries) == 0 {
			return
		}
		fmt.Fprintf(&b, "### %s\n\n", title)
		b.WriteString("| File | Destination | Problem |\n")
		b.WriteString("|------|-------------|---------|\n")
		for _, e := range entries {
			dest := e.Dest
			if dest == "" {
				dest = "-"
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(e.Path), cell(dest), cell(e.Flags.String()))
		}
		b.WriteString("\n")
	}
	section("Errors", rep.Fatal())
	section("Warnings", rep.Warnings())
	return b.String()
}

// FailureMarkdown describes the files that could not be processed
func FailureMarkdown(results []executor.Result) string {
	var b strings.Builder
	for _, r := range results {
		if r.Success {
			continue
		}
		msg := "failed"
		if r.Error != nil {
			msg = r.Error.Error()
		}
		fmt.Fprintf(&b, "- `%s`: %s\n", r.Source, msg)
	}
	return b.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
