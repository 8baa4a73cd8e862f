package diag

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/arbor-lang/arbor/internal/ast"
)

var (
	colorError   = lipgloss.Color("#E74C3C")
	colorWarning = lipgloss.Color("#F4D03F")
	colorNote    = lipgloss.Color("#20B9B4")
	colorMuted   = lipgloss.Color("241")
)

// Formatter formats diagnostics in a compiler-style layout:
//
//	error[VALIDATE_DANGLING_REFERENCE]: reference to a removed variable
//	  --> function main
//	   | node 6f1c...
//	   = note: ...
type Formatter struct {
	out io.Writer

	severity map[Severity]lipgloss.Style
	code     lipgloss.Style
	arrow    lipgloss.Style
	muted    lipgloss.Style
	fixed    lipgloss.Style
}

// NewFormatter creates a formatter writing to out. Colors are only emitted
// when out is a terminal.
func NewFormatter(out io.Writer) *Formatter {
	r := lipgloss.NewRenderer(out)
	return &Formatter{
		out: out,
		severity: map[Severity]lipgloss.Style{
			SeverityError:   r.NewStyle().Bold(true).Foreground(colorError),
			SeverityWarning: r.NewStyle().Bold(true).Foreground(colorWarning),
			SeverityNote:    r.NewStyle().Bold(true).Foreground(colorNote),
		},
		code:  r.NewStyle().Bold(true),
		arrow: r.NewStyle().Foreground(colorNote),
		muted: r.NewStyle().Foreground(colorMuted),
		fixed: r.NewStyle().Foreground(colorNote),
	}
}

// Format writes one diagnostic.
func (f *Formatter) Format(d Diagnostic) {
	f.printHeader(d)
	fmt.Fprintf(f.out, "  %s %s\n", f.arrow.Render("-->"), d.Location)
	if d.NodeID != ast.NoID {
		fmt.Fprintf(f.out, "   %s node %s\n", f.muted.Render("|"), d.NodeID)
	}
	if d.Fixed {
		fmt.Fprintf(f.out, "   %s %s\n", f.muted.Render("|"), f.fixed.Render("fixed automatically"))
	}
	f.printHelp(d)
}

// FormatAll writes every diagnostic, sorted by location then code, followed
// by a summary line.
func (f *Formatter) FormatAll(ds []Diagnostic) {
	sorted := make([]Diagnostic, len(ds))
	copy(sorted, ds)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Location.String() != b.Location.String() {
			return a.Location.String() < b.Location.String()
		}
		return a.Code < b.Code
	})
	for _, d := range sorted {
		f.Format(d)
		fmt.Fprintln(f.out)
	}
	f.printSummary(sorted)
}

// printHeader prints the header line (error[CODE]: message).
func (f *Formatter) printHeader(d Diagnostic) {
	severity := d.Severity
	if severity == "" {
		severity = SeverityError
	}
	label := f.severity[severity].Render(string(severity))
	if d.Code != "" {
		fmt.Fprintf(f.out, "%s%s: %s\n", label, f.code.Render("["+string(d.Code)+"]"), d.Message)
		return
	}
	fmt.Fprintf(f.out, "%s: %s\n", label, d.Message)
}

func (f *Formatter) printHelp(d Diagnostic) {
	for _, note := range d.Notes {
		fmt.Fprintf(f.out, "   %s note: %s\n", f.muted.Render("="), note)
	}
	if d.Suggestion != "" {
		fmt.Fprintf(f.out, "   %s help: %s\n", f.muted.Render("="), d.Suggestion)
	}
	if d.Help != "" {
		fmt.Fprintf(f.out, "   %s help: %s\n", f.muted.Render("="), strings.TrimSpace(d.Help))
	}
}

func (f *Formatter) printSummary(ds []Diagnostic) {
	errs, warnings := Counts(ds)
	if errs == 0 && warnings == 0 {
		fmt.Fprintln(f.out, f.fixed.Render("no problems found"))
		return
	}
	var parts []string
	if errs > 0 {
		parts = append(parts, f.severity[SeverityError].Render(plural(errs, "error")))
	}
	if warnings > 0 {
		parts = append(parts, f.severity[SeverityWarning].Render(plural(warnings, "warning")))
	}
	fmt.Fprintln(f.out, strings.Join(parts, ", "))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
