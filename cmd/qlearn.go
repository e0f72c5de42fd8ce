package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/agent/tabular/qlearning"
	"github.com/samuelfneumann/tabular/environment/envconfig"
	"github.com/samuelfneumann/tabular/environment/gridworld"
	"github.com/samuelfneumann/tabular/experiment"
	"github.com/samuelfneumann/tabular/report"
	"github.com/samuelfneumann/tabular/solver"
	"github.com/samuelfneumann/tabular/utils/matutils"
	"github.com/samuelfneumann/tabular/utils/progressbar"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

// qlearnFlags holds the flags of the qlearn command
type qlearnFlags struct {
	configFile string
	saveDir    string
	chart      string
	progress   bool
	printQ     bool

	env                string
	size               int
	terminals          []int
	slip               float64
	cutoff             int
	episodes           int
	maxSteps           int
	evalEpisodes       int
	alpha              float64
	epsilon            float64
	gamma              float64
	seed               uint64
	checkpointInterval int
}

// config returns the experiment Config described by the flags
func (f qlearnFlags) config() (experiment.Config, error) {
	var c experiment.Config
	if f.configFile != "" {
		var err error
		c, err = experiment.LoadConfig(f.configFile)
		if err != nil {
			return experiment.Config{}, err
		}
	} else {
		envConf := envconfig.NewTaxi(f.cutoff, f.gamma)
		if f.env != string(envconfig.Taxi) {
			envConf = envconfig.NewGridWorld(f.size, f.terminals, f.slip,
				f.cutoff, f.gamma)
			envConf.Environment = envconfig.EnvName(f.env)
		}

		c = experiment.Config{
			Type:    experiment.OnlineExp,
			EnvConf: envConf,
			AgentConf: agent.NewTypedConfig(qlearning.Config{
				Epsilon:      f.epsilon,
				LearningRate: f.alpha,
				Discount:     f.gamma,
			}),
			Episodes:        f.episodes,
			MaxEpisodeSteps: f.maxSteps,
			EvalEpisodes:    f.evalEpisodes,
			Seed:            f.seed,
		}
	}

	if f.saveDir != "" {
		c.DataDir = filepath.Join(f.saveDir, "data")
		if f.checkpointInterval > 0 {
			c.CheckpointInterval = f.checkpointInterval
			c.CheckpointDir = filepath.Join(f.saveDir, "checkpoints")
		}
	}
	return c, c.Validate()
}

// QLearnCommand returns the command which trains and evaluates a
// Q-learning agent
func QLearnCommand() *cobra.Command {
	var f qlearnFlags
	def := experiment.DefaultConfig()
	agentDef := qlearning.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "qlearn",
		Short: "Train a Q-learning agent, then evaluate its greedy policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.config()
			if err != nil {
				return err
			}
			if f.saveDir != "" {
				if err := c.Record(f.saveDir); err != nil {
					return err
				}
			}

			var opts []experiment.Option
			if f.progress {
				opts = append(opts, experiment.WithProgress(
					progressbar.NewManualProgressBar(cmd.ErrOrStderr(), 40,
						c.Episodes+c.EvalEpisodes)))
			}
			exp, a, err := c.CreateExp(opts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			result, err := exp.Run(ctx)
			if err != nil && ctx.Err() == nil {
				return err
			} else if err != nil {
				log.Warn().Err(err).Msg("interrupted, reporting the " +
					"finished episodes")
			}

			if c.DataDir != "" {
				if err := exp.Save(); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			printEpisodes(out, "train", result.TrainReturns)
			printEpisodes(out, "eval", result.EvalReturns)

			q, ok := a.(*qlearning.QLearning)
			if !ok {
				return nil
			}
			if f.printQ {
				fmt.Fprintln(out, "Q(s, a), one row per state:")
				fmt.Fprintln(out, matutils.Format(q.QTable().T()))
			}
			if err := reportGreedy(out, c.EnvConf, q); err != nil {
				return err
			}

			if f.chart == "" {
				return nil
			}
			file, err := os.Create(f.chart)
			if err != nil {
				return err
			}
			defer file.Close()
			if err := report.LearningCurve(file, result); err != nil {
				return err
			}
			return file.Close()
		},
	}

	cmd.Flags().StringVar(&f.configFile, "config", "", "JSON experiment configuration, overrides the experiment flags")
	cmd.Flags().StringVar(&f.saveDir, "save-dir", "", "Directory to save the configuration, data and checkpoints to")
	cmd.Flags().StringVar(&f.chart, "chart", "", "HTML file to plot the learning curves to")
	cmd.Flags().BoolVar(&f.progress, "progress", false, "Display a progress bar")
	cmd.Flags().BoolVar(&f.printQ, "print-q", false, "Print the learned action values")

	cmd.Flags().StringVar(&f.env, "env", string(envconfig.Taxi), "Environment (taxi, gridworld, slippery)")
	cmd.Flags().IntVar(&f.size, "size", 4, "Width and height of a gridworld")
	cmd.Flags().IntSliceVar(&f.terminals, "terminals", []int{0, 15}, "Terminal states of a gridworld")
	cmd.Flags().Float64Var(&f.slip, "slip", 0, "Slip probability of a slippery gridworld")
	cmd.Flags().IntVar(&f.cutoff, "cutoff", 0, "Episode step limit of the environment, 0 for its default")
	cmd.Flags().IntVar(&f.episodes, "episodes", def.Episodes, "Number of training episodes")
	cmd.Flags().IntVar(&f.maxSteps, "max-steps", def.MaxEpisodeSteps, "Maximum steps per episode, 0 for no limit")
	cmd.Flags().IntVar(&f.evalEpisodes, "eval-episodes", def.EvalEpisodes, "Number of evaluation episodes")
	cmd.Flags().Float64Var(&f.alpha, "alpha", agentDef.LearningRate, "Learning rate")
	cmd.Flags().Float64Var(&f.epsilon, "epsilon", agentDef.Epsilon, "Exploration probability")
	cmd.Flags().Float64Var(&f.gamma, "gamma", agentDef.Discount, "Discount factor")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Random seed")
	cmd.Flags().IntVar(&f.checkpointInterval, "checkpoint-interval", 0, "Checkpoint the agent every this many episodes, requires --save-dir")

	return cmd
}

func printEpisodes(out io.Writer, phase string, returns []float64) {
	for i, r := range returns {
		fmt.Fprintf(out, "%v episode %d: return %.2f\n", phase, i, r)
	}
	if len(returns) > 0 {
		fmt.Fprintf(out, "mean %v return: %.2f\n\n", phase,
			stat.Mean(returns, nil))
	}
}

// reportGreedy prints the greedy values and policy learned on a
// gridworld, and renders them if requested. Nothing is reported for
// other environments.
func reportGreedy(out io.Writer, c envconfig.Config, q *qlearning.QLearning) error {
	if c.Environment == envconfig.Taxi {
		return nil
	}
	m, err := c.Model()
	if err != nil {
		return err
	}

	v := solver.Values(q.StateValues())
	policy := make(solver.Policy, m.States())
	for s, a := range q.GreedyPolicy() {
		if m.Terminal(s) {
			v[s] = 0
			continue
		}
		policy[s] = solver.Act(gridworld.Actions[a])
	}

	fmt.Fprintln(out, "greedy values max_a Q(s, a):")
	fmt.Fprintln(out, printer().Values(v, m.Size()))
	fmt.Fprintln(out, "greedy policy:")
	fmt.Fprintln(out, printer().Policy(policy, m.Size()))

	return renderPNG("QLearning", solver.Config{Size: m.Size(),
		Gamma: q.Config().Discount}, v, policy)
}
