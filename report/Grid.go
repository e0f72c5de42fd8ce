// Package report formats the value functions and policies of square
// gridworlds for people to read, either as text, as an image, or as
// interactive HTML charts.
package report

import (
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/samuelfneumann/tabular/solver"
)

// Printer formats value functions and policies of n x n gridworlds as
// text grids, one row of the grid per line
type Printer struct {
	au aurora.Aurora
}

// NewPrinter returns a new Printer. If color is true, cells are
// colored with ANSI escape codes.
func NewPrinter(color bool) Printer {
	return Printer{au: aurora.NewAurora(color)}
}

// Values formats v as n lines of n fixed-point numbers with two
// decimals. Panics if v does not hold n*n values.
func (p Printer) Values(v solver.Values, n int) string {
	checkSize(len(v), n)

	var b strings.Builder
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			cell := fmt.Sprintf("%6.2f ", v[r*n+c])
			b.WriteString(p.au.Blue(cell).String())
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Policy formats pi as n lines of n arrows, using T for states in which
// no action is taken. Panics if pi does not hold n*n Decisions.
func (p Printer) Policy(pi solver.Policy, n int) string {
	checkSize(len(pi), n)

	var b strings.Builder
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			d := pi[r*n+c]
			cell := "  " + d.Glyph() + "  "
			if d.IsAction() {
				b.WriteString(p.au.Blue(cell).String())
			} else {
				b.WriteString(p.au.Green(cell).String())
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatValues formats v without color
func FormatValues(v solver.Values, n int) string {
	return NewPrinter(false).Values(v, n)
}

// FormatPolicy formats pi without color
func FormatPolicy(pi solver.Policy, n int) string {
	return NewPrinter(false).Policy(pi, n)
}

func checkSize(length, n int) {
	if n <= 0 || length != n*n {
		panic(fmt.Sprintf("report: %d entries cannot fill a %dx%d grid",
			length, n, n))
	}
}
