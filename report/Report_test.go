package report

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/samuelfneumann/tabular/environment/gridworld"
	"github.com/samuelfneumann/tabular/experiment"
	"github.com/samuelfneumann/tabular/solver"
	"github.com/stretchr/testify/require"
)

func smallGrid() (solver.Values, solver.Policy) {
	v := solver.Values{0, -1, -1, -2}
	pi := solver.Policy{
		solver.NoAction(),
		solver.Act(gridworld.Left),
		solver.Act(gridworld.Up),
		solver.Act(gridworld.Up),
	}
	return v, pi
}

func TestFormatValues(t *testing.T) {
	v, _ := smallGrid()
	require.Equal(t, "  0.00  -1.00 \n -1.00  -2.00 \n", FormatValues(v, 2))

	require.Panics(t, func() { FormatValues(v, 3) })
}

func TestFormatPolicy(t *testing.T) {
	_, pi := smallGrid()
	require.Equal(t, "  T    <  \n  ^    ^  \n", FormatPolicy(pi, 2))

	require.Panics(t, func() { FormatPolicy(pi, 0) })
}

func TestColorPrinter(t *testing.T) {
	v, pi := smallGrid()
	p := NewPrinter(true)

	values := p.Values(v, 2)
	require.Contains(t, values, "\x1b[")
	require.Contains(t, values, "-2.00")

	policy := p.Policy(pi, 2)
	require.Contains(t, policy, "\x1b[")
	require.Equal(t, 2, strings.Count(policy, "\n"))
}

func TestRenderPNG(t *testing.T) {
	m, err := gridworld.NewModel(4, []int{0, 15})
	require.NoError(t, err)
	v, pi, _, err := solver.ValueIteration(m, 1, 1e-4)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, v, pi, 4))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, 4*CellSize, img.Bounds().Dx())
	require.Equal(t, 4*CellSize, img.Bounds().Dy())

	require.Error(t, RenderPNG(&buf, v, pi, 3))
	require.Error(t, RenderPNG(&buf, v, pi[:3], 4))
}

func TestLearningCurve(t *testing.T) {
	r := experiment.Result{
		TrainReturns: []float64{-20, -12, -7},
		TrainLengths: []float64{20, 12, 7},
		EvalReturns:  []float64{-6},
		EvalLengths:  []float64{6},
	}

	var buf bytes.Buffer
	require.NoError(t, LearningCurve(&buf, r))
	require.Contains(t, buf.String(), "Training")
	require.Contains(t, buf.String(), "Evaluation")
}

func TestConvergenceChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ConvergenceChart(&buf,
		Series{"value iteration gamma=1", []float64{1, 1, 1, 0}},
		Series{"value iteration gamma=0.9", []float64{1, 0.9, 0.81, 0}},
	))
	require.Contains(t, buf.String(), "value iteration gamma=0.9")
	require.Contains(t, buf.String(), "Convergence")
}
