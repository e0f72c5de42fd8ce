package experiment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samuelfneumann/tabular/agent"
	env "github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/experiment/checkpointer"
	"github.com/samuelfneumann/tabular/experiment/tracker"
	ts "github.com/samuelfneumann/tabular/timestep"
	"gonum.org/v1/gonum/stat"
)

// Progress displays the progress of an experiment, for example a
// progressbar.ManualProgressBar
type Progress interface {
	Increment()
	Display()
}

// Option configures an Online experiment
type Option func(*Online)

// WithTrackers registers Trackers of the training episodes
func WithTrackers(t ...tracker.Tracker) Option {
	return func(o *Online) {
		o.trackers = append(o.trackers, t...)
	}
}

// WithEvalTrackers registers Trackers of the evaluation episodes
func WithEvalTrackers(t ...tracker.Tracker) Option {
	return func(o *Online) {
		o.evalTrackers = append(o.evalTrackers, t...)
	}
}

// WithCheckpointers registers Checkpointers, which are given every
// TimeStep of the training episodes
func WithCheckpointers(c ...checkpointer.Checkpointer) Option {
	return func(o *Online) {
		o.checkpointers = append(o.checkpointers, c...)
	}
}

// WithProgress displays the progress of the experiment after every
// episode
func WithProgress(p Progress) Option {
	return func(o *Online) {
		o.progress = p
	}
}

// Episode summarizes a single episode
type Episode struct {
	Return float64
	Length int
	End    ts.EndType
}

// Result holds the returns and lengths of all episodes of an
// experiment
type Result struct {
	TrainReturns []float64
	TrainLengths []float64
	EvalReturns  []float64
	EvalLengths  []float64
}

func (r *Result) add(e Episode, eval bool) {
	if eval {
		r.EvalReturns = append(r.EvalReturns, e.Return)
		r.EvalLengths = append(r.EvalLengths, float64(e.Length))
	} else {
		r.TrainReturns = append(r.TrainReturns, e.Return)
		r.TrainLengths = append(r.TrainLengths, float64(e.Length))
	}
}

// MeanTrainReturn returns the mean return of the training episodes
func (r Result) MeanTrainReturn() float64 {
	return stat.Mean(r.TrainReturns, nil)
}

// MeanEvalReturn returns the mean return of the evaluation episodes
func (r Result) MeanEvalReturn() float64 {
	return stat.Mean(r.EvalReturns, nil)
}

// Online is an Experiment that trains an agent online for a number of
// episodes, then evaluates its greedy policy for a number of episodes
// without learning.
type Online struct {
	env.Environment
	agent.Agent

	episodes        int
	maxEpisodeSteps int
	evalEpisodes    int

	trackers      []tracker.Tracker
	evalTrackers  []tracker.Tracker
	checkpointers []checkpointer.Checkpointer
	progress      Progress
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The agent is trained for episodes
// episodes, each cut off after maxEpisodeSteps steps if
// maxEpisodeSteps > 0, and then evaluated for evalEpisodes episodes.
func NewOnline(e env.Environment, a agent.Agent, episodes, maxEpisodeSteps,
	evalEpisodes int, opts ...Option) (*Online, error) {
	if episodes < 0 || evalEpisodes < 0 {
		return nil, fmt.Errorf("newOnline: number of episodes must be " +
			"non-negative")
	}
	if maxEpisodeSteps < 0 {
		return nil, fmt.Errorf("newOnline: max episode steps %d < 0",
			maxEpisodeSteps)
	}

	o := &Online{
		Environment:     e,
		Agent:           a,
		episodes:        episodes,
		maxEpisodeSteps: maxEpisodeSteps,
		evalEpisodes:    evalEpisodes,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during training can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RunEpisode runs a single episode of the experiment. If eval is true,
// the agent acts greedily and does not learn.
func (o *Online) RunEpisode(eval bool) (Episode, error) {
	if eval {
		o.Agent.Eval()
	} else {
		o.Agent.Train()
	}

	step, err := o.Environment.Reset()
	if err != nil {
		return Episode{}, fmt.Errorf("runEpisode: %w", err)
	}
	if err := o.Agent.ObserveFirst(step); err != nil {
		return Episode{}, fmt.Errorf("runEpisode: %w", err)
	}
	if err := o.track(step, eval); err != nil {
		return Episode{}, fmt.Errorf("runEpisode: %w", err)
	}

	var episodicReturn float64
	for !step.Last() {
		// Select action, step in environment
		action := o.Agent.SelectAction(step)
		step, _, err = o.Environment.Step(action)
		if err != nil {
			return Episode{}, fmt.Errorf("runEpisode: %w", err)
		}

		if !step.Last() && o.maxEpisodeSteps > 0 &&
			step.Number >= o.maxEpisodeSteps {
			step.StepType = ts.Last
			step.SetEnd(ts.Timeout)
		}
		episodicReturn += step.Reward

		// Cache the environment step in each Tracker
		if err := o.track(step, eval); err != nil {
			return Episode{}, fmt.Errorf("runEpisode: %w", err)
		}
		if eval {
			continue
		}

		// Observe the timestep and step the agent
		if err := o.Agent.Observe(action, step); err != nil {
			return Episode{}, fmt.Errorf("runEpisode: %w", err)
		}
		if err := o.Agent.Step(); err != nil {
			return Episode{}, fmt.Errorf("runEpisode: %w", err)
		}
		if err := o.checkpoint(step); err != nil {
			return Episode{}, fmt.Errorf("runEpisode: %w", err)
		}
	}

	if !eval {
		o.Agent.EndEpisode()
	}
	if step.EndType() == ts.Timeout {
		log.Warn().
			Bool("eval", eval).
			Int("steps", step.Number).
			Msg("episode cut off before reaching a terminal state")
	}

	return Episode{episodicReturn, step.Number, step.EndType()}, nil
}

// Run runs all training episodes followed by all evaluation episodes.
// Run stops early if ctx is cancelled, returning the results so far.
func (o *Online) Run(ctx context.Context) (Result, error) {
	var result Result
	defer o.Agent.Train()

	for i := 0; i < o.episodes+o.evalEpisodes; i++ {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("run: %w", err)
		}

		eval := i >= o.episodes
		ep, err := o.RunEpisode(eval)
		if err != nil {
			return result, fmt.Errorf("run: %w", err)
		}
		result.add(ep, eval)

		phase, number := "train", i
		if eval {
			phase, number = "eval", i-o.episodes
		}
		log.Info().
			Str("phase", phase).
			Int("episode", number).
			Float64("return", ep.Return).
			Int("length", ep.Length).
			Msg("episode finished")

		if o.progress != nil {
			o.progress.Increment()
			o.progress.Display()
		}
	}

	return result, nil
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	for _, trackers := range [][]tracker.Tracker{o.trackers, o.evalTrackers} {
		for _, t := range trackers {
			if err := t.Save(); err != nil {
				return fmt.Errorf("save: %w", err)
			}
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each
// tracker of the current phase
func (o *Online) track(t ts.TimeStep, eval bool) error {
	trackers := o.trackers
	if eval {
		trackers = o.evalTrackers
	}

	for _, tr := range trackers {
		if err := tr.Track(t); err != nil {
			return err
		}
	}
	return nil
}

// checkpoint passes the timestep to each checkpointer
func (o *Online) checkpoint(t ts.TimeStep) error {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(t); err != nil {
			return err
		}
	}
	return nil
}
