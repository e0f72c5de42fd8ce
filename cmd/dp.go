package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samuelfneumann/tabular/environment/gridworld"
	"github.com/samuelfneumann/tabular/report"
	"github.com/samuelfneumann/tabular/solver"
	"github.com/spf13/cobra"
)

// ValueIterationCommand returns the command which runs value iteration
// for each discount factor
func ValueIterationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vi",
		Short: "Solve the gridworld with value iteration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return solveAll(cmd.OutOrStdout(), solver.ValueIterationType)
		},
	}
	addGridFlags(cmd)

	return cmd
}

// PolicyIterationCommand returns the command which runs policy
// iteration for each discount factor
func PolicyIterationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pi",
		Short: "Solve the gridworld with policy iteration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return solveAll(cmd.OutOrStdout(), solver.PolicyIterationType)
		},
	}
	addGridFlags(cmd)
	addEvalFlags(cmd)

	return cmd
}

// EvaluateCommand returns the command which evaluates the policy that
// always takes the same action
func EvaluateCommand() *cobra.Command {
	var action string

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate the policy which always takes the same action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := gridworld.ParseAction(action)
			if err != nil {
				return err
			}

			for _, c := range configs() {
				m, err := c.Model()
				if err != nil {
					return err
				}
				policy := solver.NewConstantPolicy(m, a)

				v, err := c.EvaluatePolicy(policy,
					solver.WithObserver(debugObserver("evaluation", c.Gamma)))
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				header(out, fmt.Sprintf("POLICY EVALUATION (%v)", a), c.Gamma)
				fmt.Fprintln(out, "V(s):")
				fmt.Fprintln(out, printer().Values(v, c.Size))
				fmt.Fprintln(out, "π(s):")
				fmt.Fprintln(out, printer().Policy(policy, c.Size))

				if err := renderPNG("Evaluation", c, v, policy); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addGridFlags(cmd)
	addEvalFlags(cmd)
	cmd.Flags().StringVar(&action, "policy", "up", "Action taken in every state (up, right, down, left)")

	return cmd
}

func addEvalFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&evalMaxIterations, "eval-max-iterations", solver.DefaultEvalMaxIterations, "Maximum number of sweeps of each policy evaluation")
}

// solveAll solves the problem of each configured discount factor in
// turn and prints the results to out
func solveAll(out io.Writer, t solver.Type) error {
	for _, c := range configs() {
		s, err := solver.New(t, c)
		if err != nil {
			return err
		}

		result, err := s.Solve(solver.WithObserver(debugObserver(string(t),
			c.Gamma)))
		if errors.Is(err, solver.ErrNotConverged) {
			log.Warn().Err(err).Float64("gamma", c.Gamma).Msg("printing " +
				"the last iterate")
		} else if err != nil {
			return err
		}

		printResult(out, t, c, result)
		if err := renderPNG(string(t), c, result.Values,
			result.Policy); err != nil {
			return err
		}
	}
	return nil
}

func printResult(out io.Writer, t solver.Type, c solver.Config,
	result solver.Result) {
	title := "VALUE ITERATION"
	if t == solver.PolicyIterationType {
		title = "POLICY ITERATION"
	}

	header(out, title, c.Gamma)
	fmt.Fprintln(out, "iterations:", result.Iterations)
	fmt.Fprintln(out, "optimal values V(s):")
	fmt.Fprintln(out, printer().Values(result.Values, c.Size))
	fmt.Fprintln(out, "optimal policy π(s):")
	fmt.Fprintln(out, printer().Policy(result.Policy, c.Size))
}

func header(out io.Writer, title string, gamma float64) {
	rule := strings.Repeat("=", 37)
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "%-17s - gamma = %v\n", title, gamma)
	fmt.Fprintln(out, rule)
}

// debugObserver logs the change of the value function of every sweep
func debugObserver(name string, gamma float64) solver.Observer {
	return func(sweep int, delta float64) {
		log.Debug().
			Str("solver", name).
			Float64("gamma", gamma).
			Int("sweep", sweep).
			Float64("delta", delta).
			Msg("sweep finished")
	}
}

// renderPNG renders v and policy to a PNG file in pngDir, if set
func renderPNG(name string, c solver.Config, v solver.Values,
	policy solver.Policy) error {
	if pngDir == "" {
		return nil
	}
	if err := os.MkdirAll(pngDir, 0o755); err != nil {
		return err
	}

	filename := filepath.Join(pngDir, fmt.Sprintf("%v-gamma%v.png", name,
		c.Gamma))
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := report.RenderPNG(f, v, policy, c.Size); err != nil {
		return err
	}
	log.Info().Str("file", filename).Msg("rendered heat map")
	return f.Close()
}
