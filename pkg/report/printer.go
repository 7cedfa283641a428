// Package report prints human-readable run summaries.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/gnana997/apisync/pkg/emitter"
	"github.com/gnana997/apisync/pkg/pipeline"
	"github.com/gnana997/apisync/pkg/source"
)

// Printer writes summaries to out and warnings and errors to errOut.
// Color follows fatih/color's detection (NO_COLOR, non-TTY output).
type Printer struct {
	out    io.Writer
	errOut io.Writer

	ok   *color.Color
	warn *color.Color
	fail *color.Color
	dim  *color.Color
}

// NewPrinter creates a Printer.
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{
		out:    out,
		errOut: errOut,
		ok:     color.New(color.FgGreen, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		fail:   color.New(color.FgRed, color.Bold),
		dim:    color.New(color.Faint),
	}
}

// Summary prints the outcome of a sync run: method count, names and what
// happened to the target.
func (p *Printer) Summary(r *pipeline.Result) {
	for _, w := range r.Warnings {
		p.Warning(w)
	}

	switch {
	case r.Diff != "":
		fmt.Fprint(p.out, r.Diff)
		if !strings.HasSuffix(r.Diff, "\n") {
			fmt.Fprintln(p.out)
		}
		p.ok.Fprint(p.out, "~ ")
		fmt.Fprintf(p.out, "dry run: %s would change\n", r.Target)
	case r.Written:
		p.ok.Fprint(p.out, "✓ ")
		fmt.Fprintf(p.out, "updated %s\n", r.Target)
	case r.AnchorFound:
		p.ok.Fprint(p.out, "✓ ")
		fmt.Fprintf(p.out, "%s is up to date\n", r.Target)
	default:
		p.warn.Fprint(p.out, "! ")
		fmt.Fprintf(p.out, "%s not updated\n", r.Target)
	}

	fmt.Fprintf(p.out, "%d method(s): %s\n", len(r.Methods), strings.Join(r.Names(), ", "))
	p.dim.Fprintf(p.out, "%d documented, %d bare before merge, %dms\n", r.Documented, r.Bare, r.Stats.TotalTimeMs)
}

// Methods prints one line per method: name, async marker, signature and
// description.
func (p *Printer) Methods(entries []emitter.Entry) {
	width := 0
	for _, e := range entries {
		if len(e.Name) > width {
			width = len(e.Name)
		}
	}

	for _, e := range entries {
		async := "     "
		if e.IsAsync {
			async = "async"
		}
		p.ok.Fprintf(p.out, "%-*s", width, e.Name)
		fmt.Fprintf(p.out, "  %s  %s\n", async, e.Signature)
		p.dim.Fprintf(p.out, "%*s  %s\n", width+7, "", e.Description)
	}
	fmt.Fprintf(p.out, "%d method(s)\n", len(entries))
}

// MethodsJSON writes entries as an indented JSON array.
func (p *Printer) MethodsJSON(entries []emitter.Entry) error {
	if entries == nil {
		entries = []emitter.Entry{}
	}
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// Warning prints a warning line.
func (p *Printer) Warning(msg string) {
	p.warn.Fprint(p.errOut, "! ")
	fmt.Fprintln(p.errOut, msg)
}

// Error prints err with a hint for the errors users can fix themselves.
func (p *Printer) Error(err error) {
	p.fail.Fprint(p.errOut, "✗ ")
	fmt.Fprintln(p.errOut, err.Error())

	switch {
	case errors.Is(err, source.ErrSourceNotFound):
		fmt.Fprintln(p.errOut, "  hint: point --source or source.path in .apisync/config.yaml at the API bundle")
	case errors.Is(err, pipeline.ErrStrict):
		fmt.Fprintln(p.errOut, "  hint: fix the problem above or run without --strict to continue with a warning")
	}
}
