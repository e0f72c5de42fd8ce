// Package envconfig provides configuration structs for configuring
// environments with their tasks. Environment configurations in this
// package are JSON serializable.
package envconfig

import (
	"fmt"

	env "github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/environment/gridworld"
	"github.com/samuelfneumann/tabular/environment/taxi"
	ts "github.com/samuelfneumann/tabular/timestep"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	GridWorld EnvName = "gridworld"
	Slippery  EnvName = "slippery"
	Taxi      EnvName = "taxi"
)

// DefaultSlip is the slip probability of a slippery gridworld when
// none is configured
const DefaultSlip = 0.1

// Config implements a specific configuration of a specific environment.
// Size, Terminals, and Slip are only used by gridworlds.
type Config struct {
	Environment   EnvName
	Size          int
	Terminals     []int
	Slip          float64
	EpisodeCutoff int
	Discount      float64
}

// NewTaxi returns the Config of the Taxi environment
func NewTaxi(episodeCutoff int, discount float64) Config {
	return Config{
		Environment:   Taxi,
		EpisodeCutoff: episodeCutoff,
		Discount:      discount,
	}
}

// NewGridWorld returns the Config of an n x n gridworld. If slip > 0,
// the gridworld is slippery.
func NewGridWorld(n int, terminals []int, slip float64, episodeCutoff int,
	discount float64) Config {
	name := GridWorld
	if slip > 0 {
		name = Slippery
	}

	return Config{
		Environment:   name,
		Size:          n,
		Terminals:     terminals,
		Slip:          slip,
		EpisodeCutoff: episodeCutoff,
		Discount:      discount,
	}
}

// Validate checks the Config for errors
func (c Config) Validate() error {
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: discount %v not in [0, 1]", c.Discount)
	}
	if c.EpisodeCutoff < 0 {
		return fmt.Errorf("validate: episode cutoff %d < 0", c.EpisodeCutoff)
	}

	switch c.Environment {
	case Taxi:
		return nil

	case GridWorld, Slippery:
		if c.Slip < 0 || c.Slip > 1 {
			return fmt.Errorf("validate: slip %v not in [0, 1]", c.Slip)
		}
		if c.Environment == GridWorld && c.Slip != 0 {
			return fmt.Errorf("validate: %v cannot slip, use %v", GridWorld,
				Slippery)
		}
		m, err := c.Model()
		if err != nil {
			return fmt.Errorf("validate: %w", err)
		}
		if len(m.NonTerminalStates()) == 0 {
			return fmt.Errorf("validate: every state is terminal")
		}
		return nil
	}

	return fmt.Errorf("validate: no such environment %q", c.Environment)
}

// Model returns the transition model of a configured gridworld
func (c Config) Model() (gridworld.Model, error) {
	if c.Environment != GridWorld && c.Environment != Slippery {
		return gridworld.Model{}, fmt.Errorf("model: %v is not a gridworld",
			c.Environment)
	}
	return gridworld.NewModel(c.Size, c.Terminals)
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment.
func (c Config) Create(seed uint64) (env.Environment, ts.TimeStep, error) {
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %w", err)
	}

	switch c.Environment {
	case Taxi:
		t, step, err := taxi.New(c.EpisodeCutoff, c.Discount, seed)
		if err != nil {
			return nil, ts.TimeStep{}, fmt.Errorf("create: %w", err)
		}
		return t, step, nil

	case GridWorld, Slippery:
		return c.createGridWorld(seed)
	}

	panic(fmt.Sprintf("create: no such environment %v", c.Environment))
}

func (c Config) createGridWorld(seed uint64) (env.Environment, ts.TimeStep,
	error) {
	m, err := c.Model()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %w", err)
	}

	slip := c.Slip
	if c.Environment == Slippery && slip == 0 {
		slip = DefaultSlip
	}

	s, err := gridworld.NewNonTerminalStarter(m, seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %w", err)
	}
	task := gridworld.NewGoal(s, m, c.EpisodeCutoff, gridworld.StepReward)

	g, step, err := gridworld.New(m, task, c.Discount, slip, seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %w", err)
	}
	return g, step, nil
}
