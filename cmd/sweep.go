package cmd

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samuelfneumann/tabular/report"
	"github.com/samuelfneumann/tabular/solver"
	"github.com/samuelfneumann/tabular/utils/progressbar"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
)

// sweepRun is the outcome of running both solvers for one discount
// factor
type sweepRun struct {
	config solver.Config
	vi, pi solver.Result

	// Largest value change of each value iteration sweep
	deltas []float64
	err    error
}

// SweepCommand returns the command which runs value iteration and
// policy iteration for every discount factor in parallel and compares
// their solutions
func SweepCommand() *cobra.Command {
	var chart string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Compare value iteration and policy iteration for each discount factor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs := configs()
			for _, c := range cs {
				if err := c.Validate(); err != nil {
					return err
				}
			}

			status := progressbar.NewLines(cmd.ErrOrStderr(), len(cs))
			runs := make([]sweepRun, len(cs))

			var wg sync.WaitGroup
			for i, c := range cs {
				wg.Add(1)
				go func(i int, c solver.Config) {
					defer wg.Done()
					runs[i] = sweep(c, func(s string) {
						status.Set(i, fmt.Sprintf("gamma %-5v %v", c.Gamma, s))
					})
				}(i, c)
			}
			wg.Wait()

			out := cmd.OutOrStdout()
			var series []report.Series
			for _, run := range runs {
				if run.err != nil {
					return run.err
				}

				printResult(out, solver.ValueIterationType, run.config, run.vi)
				printResult(out, solver.PolicyIterationType, run.config, run.pi)
				fmt.Fprintf(out, "max |V_vi - V_pi| = %.2e, same policy: %v\n\n",
					floats.Distance(run.vi.Values, run.pi.Values, math.Inf(1)),
					run.vi.Policy.Equal(run.pi.Policy))

				series = append(series, report.Series{
					Name: fmt.Sprintf("value iteration gamma=%v", run.config.Gamma),
					Data: run.deltas,
				})
			}

			if chart == "" {
				return nil
			}
			f, err := os.Create(chart)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := report.ConvergenceChart(f, series...); err != nil {
				return err
			}
			return f.Close()
		},
	}
	addGridFlags(cmd)
	addEvalFlags(cmd)
	cmd.Flags().StringVar(&chart, "chart", "", "HTML file to plot the convergence of value iteration to")

	return cmd
}

// sweep solves c with both solvers, reporting its progress to status
func sweep(c solver.Config, status func(string)) sweepRun {
	run := sweepRun{config: c}

	record := func(n int, delta float64) {
		run.deltas = append(run.deltas, delta)
		status(fmt.Sprintf("value iteration: sweep %d, delta %.2e", n,
			delta))
	}
	vi, err := c.ValueIteration(solver.WithObserver(record))
	if err != nil && !errors.Is(err, solver.ErrNotConverged) {
		run.err = err
		return run
	}
	run.vi = vi

	var sweeps int
	pi, err := c.PolicyIteration(solver.WithObserver(func(int, float64) {
		sweeps++
	}))
	if err != nil && !errors.Is(err, solver.ErrNotConverged) {
		run.err = err
		return run
	}
	run.pi = pi

	status(fmt.Sprintf("done: value iteration %d sweeps, policy iteration "+
		"%d iterations (%d evaluation sweeps)", vi.Iterations, pi.Iterations,
		sweeps))
	log.Debug().Float64("gamma", c.Gamma).Msg("sweep finished")
	return run
}
