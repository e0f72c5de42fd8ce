package report

import (
	"fmt"
	"io"

	"github.com/fogleman/gg"
	"github.com/samuelfneumann/tabular/solver"
	"github.com/samuelfneumann/tabular/utils/floatutils"
	"gonum.org/v1/gonum/floats"
)

// CellSize is the width and height in pixels of each state drawn by
// RenderPNG
const CellSize = 64

// RenderPNG draws the value function v and policy pi of an n x n
// gridworld as a heat map and encodes it as a PNG to w. Higher values
// are drawn in brighter green, and each cell is labelled with its
// value and the arrow of its action.
func RenderPNG(w io.Writer, v solver.Values, pi solver.Policy, n int) error {
	if n <= 0 || len(v) != n*n || len(pi) != n*n {
		return fmt.Errorf("renderPNG: %d values and %d decisions cannot "+
			"fill a %dx%d grid", len(v), len(pi), n, n)
	}

	dc := gg.NewContext(n*CellSize, n*CellSize)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	min, max := floats.Min(v), floats.Max(v)
	for s := range v {
		row, col := s/n, s%n
		x, y := float64(col*CellSize), float64(row*CellSize)

		// Cells
		shade := floatutils.Normalize(v[s], min, max)
		dc.DrawRectangle(x, y, CellSize, CellSize)
		if pi[s].IsAction() {
			dc.SetRGB(0.2*(1-shade), 0.3+0.6*shade, 0.2*(1-shade))
		} else {
			dc.SetRGB(0.85, 0.85, 0.85)
		}
		dc.FillPreserve()
		dc.SetRGB(0, 0, 0)
		dc.SetLineWidth(1)
		dc.Stroke()

		// Labels
		cx, cy := x+CellSize/2, y+CellSize/2
		dc.DrawStringAnchored(pi[s].Glyph(), cx, cy-CellSize/6, 0.5, 0.5)
		dc.DrawStringAnchored(fmt.Sprintf("%.2f", v[s]), cx, cy+CellSize/6,
			0.5, 0.5)
	}

	return dc.EncodePNG(w)
}
