// Package environment outlines the interfaces and structs needed to
// implement concrete environments.
//
// Environments in this package are stepping oracles over finite,
// enumerable state and action sets: states and actions are both
// integer indices. Learning algorithms only ever see an Environment
// through this interface and never inspect its dynamics.
package environment

import (
	"errors"
	"fmt"

	"github.com/samuelfneumann/tabular/timestep"
)

// ErrInvalidAction is returned by Step when an action index lies
// outside of the environment's action specification
var ErrInvalidAction = errors.New("invalid action")

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() int
}

// Ender determines when an episode should end. If End returns true,
// it has also set the argument TimeStep's StepType to timestep.Last
// and recorded the appropriate EndType.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// Task implements the reward scheme and episode boundaries for taking
// actions in some environment
type Task interface {
	Starter
	Ender

	// GetReward returns the reward for taking action in state and
	// arriving in nextState
	GetReward(state, action, nextState int) float64

	// Min and Max return the bounds of the rewards of the Task
	Min() float64
	Max() float64
}

// Environment implements a simulated environment, which includes a
// Task to complete
type Environment interface {
	// Reset starts a new episode and returns its first TimeStep
	Reset() (timestep.TimeStep, error)

	// Step takes an action in the environment and returns the next
	// TimeStep, along with whether or not the episode has ended.
	Step(action int) (timestep.TimeStep, bool, error)

	// CurrentTimeStep returns the most recent TimeStep
	CurrentTimeStep() timestep.TimeStep

	RewardSpec() Spec
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}

// ValidateAction returns an error wrapping ErrInvalidAction if action
// is not in the action specification of env
func ValidateAction(env Environment, action int) error {
	spec := env.ActionSpec()
	if !spec.Contains(action) {
		return &ActionError{Action: action, Actions: spec.Len()}
	}
	return nil
}

// ActionError describes an action that was out of range
type ActionError struct {
	Action  int
	Actions int
}

func (a *ActionError) Error() string {
	return fmt.Sprintf("step: action %d not in [0, %d)", a.Action, a.Actions)
}

// Unwrap allows errors.Is(err, ErrInvalidAction)
func (a *ActionError) Unwrap() error {
	return ErrInvalidAction
}
