package cmd

import (
	"github.com/samuelfneumann/tabular/report"
	"github.com/samuelfneumann/tabular/solver"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	color    bool
	pngDir   string

	size              int
	terminals         []int
	gammas            []float64
	theta             float64
	evalMaxIterations int
	maxIterations     int
)

// AddFlags adds the flags shared by all commands
func AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&color, "color", false, "Color the printed grids")
	cmd.PersistentFlags().StringVar(&pngDir, "png", "", "Directory to render value and policy heat maps to")
}

// addGridFlags adds the flags which configure the dynamic programming
// problems of a command
func addGridFlags(cmd *cobra.Command) {
	def := solver.DefaultConfig(1.0)

	cmd.Flags().IntVar(&size, "size", def.Size, "Width and height of the gridworld")
	cmd.Flags().IntSliceVar(&terminals, "terminals", def.Terminals, "Terminal states of the gridworld")
	cmd.Flags().Float64SliceVar(&gammas, "gamma", []float64{1.0, 0.9, 0.8}, "Discount factors to solve for")
	cmd.Flags().Float64Var(&theta, "theta", def.Theta, "Convergence threshold")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Maximum number of iterations, 0 for no limit")
}

// configs returns the solver configuration of each discount factor
func configs() []solver.Config {
	cs := make([]solver.Config, len(gammas))
	for i, gamma := range gammas {
		cs[i] = solver.Config{
			Size:              size,
			Terminals:         terminals,
			Gamma:             gamma,
			Theta:             theta,
			EvalMaxIterations: evalMaxIterations,
			MaxIterations:     maxIterations,
		}
	}
	return cs
}

func printer() report.Printer {
	return report.NewPrinter(color)
}
