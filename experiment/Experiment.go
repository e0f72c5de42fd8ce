// Package experiment implements functionality for running an experiment
package experiment

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/agent/tabular/qlearning"
	"github.com/samuelfneumann/tabular/environment/envconfig"
	"github.com/samuelfneumann/tabular/experiment/checkpointer"
	"github.com/samuelfneumann/tabular/experiment/tracker"
	ts "github.com/samuelfneumann/tabular/timestep"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments will track environment TimeSteps, caching each TimeStep
// in RAM to be later saved to disk. The Save() function
// will then take all cached data and save it to disk. This is usually
// performed after an experiment has been run. The Run() method will
// run all episodes, and the RunEpisode() function will run a single
// episode.
//
// In order to save data, Experiments use Trackers. Trackers determine
// which data generated during the experiment is saved. Experiments
// send each TimeStep to Trackers using the Tracker's Track() method.
// New Trackers can be registered with an Experiment through the
// consturctor or through an Experiment's Register() function.
type Experiment interface {
	Run(ctx context.Context) (Result, error)
	RunEpisode(eval bool) (Episode, error)

	// Tracks current timestep by sending it to Trackers
	track(ts.TimeStep, bool) error

	// Save all tracked data to disk
	Save() error

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t tracker.Tracker)

	// Saves the current state of all agents
	checkpoint(ts.TimeStep) error
}

// Type is a type of experiment
type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Names of the files trackers save their data to
const (
	TrainReturnFile = "train_returns.bin"
	TrainLengthFile = "train_lengths.bin"
	EvalReturnFile  = "eval_returns.bin"
	ConfigFile      = "config.json"
)

// Config represents a configuration of an experiment.
type Config struct {
	Type
	EnvConf   envconfig.Config
	AgentConf agent.TypedConfig

	// Episodes is the number of training episodes, each of which is
	// cut off after MaxEpisodeSteps steps if MaxEpisodeSteps > 0
	Episodes        int
	MaxEpisodeSteps int

	// EvalEpisodes greedy episodes are run after training
	EvalEpisodes int

	Seed uint64

	// The agent is checkpointed to CheckpointDir every
	// CheckpointInterval training episodes if CheckpointInterval > 0
	CheckpointInterval int
	CheckpointDir      string

	// Trackers save their data to DataDir if it is not empty
	DataDir string
}

// DefaultConfig returns the Config of Q-Learning on the Taxi
// environment for 20 training episodes of at most 100 steps, followed
// by 5 evaluation episodes
func DefaultConfig() Config {
	agentConf := qlearning.DefaultConfig()
	return Config{
		Type:            OnlineExp,
		EnvConf:         envconfig.NewTaxi(0, agentConf.Discount),
		AgentConf:       agent.NewTypedConfig(agentConf),
		Episodes:        20,
		MaxEpisodeSteps: 100,
		EvalEpisodes:    5,
	}
}

// LoadConfig reads a JSON encoded Config from the file filename
func LoadConfig(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}
	return c, nil
}

// Record saves the Config as JSON to the file ConfigFile in dir,
// creating dir if needed
func (c Config) Record(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("record: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ConfigFile), data, 0o644)
}

// Validate checks the Config for errors
func (c Config) Validate() error {
	if c.Type != OnlineExp {
		return fmt.Errorf("validate: no such experiment type %q", c.Type)
	}
	if err := c.EnvConf.Validate(); err != nil {
		return fmt.Errorf("validate: environment: %w", err)
	}
	if c.AgentConf.Config == nil {
		return fmt.Errorf("validate: no agent configured")
	}
	if err := c.AgentConf.Validate(); err != nil {
		return fmt.Errorf("validate: agent: %w", err)
	}
	if c.Episodes < 0 {
		return fmt.Errorf("validate: episodes %d < 0", c.Episodes)
	}
	if c.MaxEpisodeSteps < 0 {
		return fmt.Errorf("validate: max episode steps %d < 0",
			c.MaxEpisodeSteps)
	}
	if c.EvalEpisodes < 0 {
		return fmt.Errorf("validate: evaluation episodes %d < 0",
			c.EvalEpisodes)
	}
	if c.CheckpointInterval < 0 {
		return fmt.Errorf("validate: checkpoint interval %d < 0",
			c.CheckpointInterval)
	}
	if c.CheckpointInterval > 0 && c.CheckpointDir == "" {
		return fmt.Errorf("validate: checkpointing requires a directory")
	}
	return nil
}

// CreateExp creates the experiment described by the Config, along
// with the agent it trains
func (c Config) CreateExp(opts ...Option) (*Online, agent.Agent, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, fmt.Errorf("createExp: %w", err)
	}

	env, _, err := c.EnvConf.Create(c.Seed)
	if err != nil {
		return nil, nil, fmt.Errorf("createExp: could not create "+
			"environment: %w", err)
	}

	a, err := c.AgentConf.CreateAgent(env, c.Seed)
	if err != nil {
		return nil, nil, fmt.Errorf("createExp: could not create agent: %w",
			err)
	}

	if c.CheckpointInterval > 0 {
		if err := os.MkdirAll(c.CheckpointDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("createExp: %w", err)
		}
		s, ok := a.(checkpointer.Serializable)
		if !ok {
			return nil, nil, fmt.Errorf("createExp: agent %T cannot be "+
				"checkpointed", a)
		}
		check, err := checkpointer.NewNEpisode(c.CheckpointInterval, s,
			checkpointer.FilenameEnumerator(0, c.CheckpointDir, "agent",
				".bin"))
		if err != nil {
			return nil, nil, fmt.Errorf("createExp: %w", err)
		}
		opts = append(opts, WithCheckpointers(check))
	}

	if c.DataDir != "" {
		if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("createExp: %w", err)
		}
		opts = append(opts,
			WithTrackers(
				tracker.NewReturn(filepath.Join(c.DataDir, TrainReturnFile)),
				tracker.NewEpisodeLength(filepath.Join(c.DataDir,
					TrainLengthFile)),
			),
			WithEvalTrackers(
				tracker.NewReturn(filepath.Join(c.DataDir, EvalReturnFile)),
			),
		)
	}

	switch c.Type {
	case OnlineExp:
		e, err := NewOnline(env, a, c.Episodes, c.MaxEpisodeSteps,
			c.EvalEpisodes, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("createExp: %w", err)
		}
		return e, a, nil
	}

	panic(fmt.Sprintf("createExp: no such experiment type %v", c.Type))
}
