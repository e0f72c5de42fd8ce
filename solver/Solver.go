// Package solver implements dynamic programming solvers for gridworld
// Models: value iteration, policy evaluation, and policy iteration.
//
// The solvers are pure functions of their inputs. They perform no I/O
// and share no state, so separate invocations may run concurrently.
package solver

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samuelfneumann/tabular/environment/gridworld"
)

var (
	// ErrInvalidConfig is returned when a solver is given malformed
	// input. It is returned before any sweep is performed.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotConverged is returned when a solver reaches its iteration
	// cap before converging
	ErrNotConverged = errors.New("not converged")
)

// Type describes different types of solvers that are available
type Type string

// Available solver types
const (
	ValueIterationType  Type = "ValueIteration"
	PolicyIterationType Type = "PolicyIteration"
)

// Result is the outcome of running a solver
type Result struct {
	Values     Values
	Policy     Policy
	Iterations int
}

// Solver pairs a solver Type with its Config so that both can be JSON
// marshalled and unmarshalled together.
type Solver struct {
	Type
	Config
}

// New returns a new Solver of type t with configuration c
func New(t Type, c Config) (*Solver, error) {
	if !validType(t) {
		return nil, fmt.Errorf("new: %w: unknown solver type %q",
			ErrInvalidConfig, t)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	return &Solver{Type: t, Config: c}, nil
}

// Solve runs the solver
func (s *Solver) Solve(opts ...Option) (Result, error) {
	switch s.Type {
	case ValueIterationType:
		return s.Config.ValueIteration(opts...)

	case PolicyIterationType:
		return s.Config.PolicyIteration(opts...)
	}
	return Result{}, fmt.Errorf("solve: %w: unknown solver type %q",
		ErrInvalidConfig, s.Type)
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (s *Solver) UnmarshalJSON(data []byte) error {
	// Unmarshal into an alias type to avoid recursing into this method
	type solver Solver
	var raw solver
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if !validType(raw.Type) {
		return fmt.Errorf("unmarshalJSON: %w: unknown solver type %q",
			ErrInvalidConfig, raw.Type)
	}

	*s = Solver(raw)
	return nil
}

func validType(t Type) bool {
	return t == ValueIterationType || t == PolicyIterationType
}

// Config describes a gridworld and the parameters of the solvers run
// on it
type Config struct {
	Size      int
	Terminals []int
	Gamma     float64
	Theta     float64

	// EvalMaxIterations caps the sweeps of each policy evaluation. If
	// 0, DefaultEvalMaxIterations is used.
	EvalMaxIterations int

	// MaxIterations caps value iteration sweeps and policy iteration
	// outer iterations. If 0, there is no cap.
	MaxIterations int
}

// DefaultConfig returns the Config of a 4 x 4 gridworld with terminal
// states in two opposite corners
func DefaultConfig(gamma float64) Config {
	return Config{
		Size:              4,
		Terminals:         []int{0, 15},
		Gamma:             gamma,
		Theta:             1e-4,
		EvalMaxIterations: DefaultEvalMaxIterations,
	}
}

// Validate checks the Config for errors
func (c Config) Validate() error {
	if _, err := gridworld.NewModel(c.Size, c.Terminals); err != nil {
		return fmt.Errorf("validate: %w: %v", ErrInvalidConfig, err)
	}
	if !(c.Gamma > 0 && c.Gamma <= 1) {
		return fmt.Errorf("validate: %w: gamma %v not in (0, 1]",
			ErrInvalidConfig, c.Gamma)
	}
	if !(c.Theta > 0) {
		return fmt.Errorf("validate: %w: theta %v must be positive",
			ErrInvalidConfig, c.Theta)
	}
	if c.Gamma == 1 && len(c.Terminals) == 0 {
		return fmt.Errorf("validate: %w: gamma 1 requires a terminal state",
			ErrInvalidConfig)
	}
	if c.EvalMaxIterations < 0 {
		return fmt.Errorf("validate: %w: evaluation max iterations %d < 0",
			ErrInvalidConfig, c.EvalMaxIterations)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("validate: %w: max iterations %d < 0",
			ErrInvalidConfig, c.MaxIterations)
	}
	return nil
}

// Model returns the gridworld Model described by the Config
func (c Config) Model() (gridworld.Model, error) {
	m, err := gridworld.NewModel(c.Size, c.Terminals)
	if err != nil {
		return gridworld.Model{}, fmt.Errorf("model: %w: %v",
			ErrInvalidConfig, err)
	}
	return m, nil
}

func (c Config) evalMaxIterations() int {
	if c.EvalMaxIterations == 0 {
		return DefaultEvalMaxIterations
	}
	return c.EvalMaxIterations
}

// options prepends the iteration cap of the Config to opts so that
// caller supplied options take precedence
func (c Config) options(opts []Option) []Option {
	return append([]Option{WithMaxIterations(c.MaxIterations)}, opts...)
}

// ValueIteration runs ValueIteration on the gridworld of the Config
func (c Config) ValueIteration(opts ...Option) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	m, err := c.Model()
	if err != nil {
		return Result{}, err
	}

	v, p, n, err := ValueIteration(m, c.Gamma, c.Theta, c.options(opts)...)
	return Result{v, p, n}, err
}

// PolicyIteration runs PolicyIteration on the gridworld of the Config
func (c Config) PolicyIteration(opts ...Option) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	m, err := c.Model()
	if err != nil {
		return Result{}, err
	}

	v, p, n, err := PolicyIteration(m, c.Gamma, c.Theta,
		c.evalMaxIterations(), c.options(opts)...)
	return Result{v, p, n}, err
}

// EvaluatePolicy runs EvaluatePolicy for policy on the gridworld of
// the Config
func (c Config) EvaluatePolicy(policy Policy, opts ...Option) (Values,
	error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	m, err := c.Model()
	if err != nil {
		return nil, err
	}

	return EvaluatePolicy(policy, m, c.Gamma, c.Theta, c.evalMaxIterations(),
		opts...)
}
