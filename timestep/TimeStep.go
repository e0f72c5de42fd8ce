// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType describes how an episode ended. Only the last TimeStep in an
// episode carries an EndType other than Nil.
type EndType int

const (
	Nil EndType = iota

	// TerminalStateReached means the environment entered an absorbing
	// state, so there is nothing left to bootstrap from
	TerminalStateReached

	// Timeout means the episode was cut off by a step limit while the
	// environment was still in a non-terminal state
	Timeout
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Timeout:
		return "Timeout"
	default:
		return "Nil"
	}
}

// TimeStep packages together a single timestep in an environment. The
// Observation is the index of the environment state that the step
// arrived in.
type TimeStep struct {
	StepType
	Reward      float64
	Discount    float64
	Observation int
	Number      int

	end EndType
}

// New returns a new TimeStep
func New(t StepType, r, d float64, o int, n int) TimeStep {
	return TimeStep{StepType: t, Reward: r, Discount: d, Observation: o,
		Number: n}
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

// SetEnd sets the way in which the episode ended. It has no effect
// unless the TimeStep is the last in the episode.
func (t *TimeStep) SetEnd(e EndType) {
	if t.Last() {
		t.end = e
	}
}

// EndType returns how the episode ended
func (t *TimeStep) EndType() EndType {
	return t.end
}

// Terminal returns whether the TimeStep arrived in an absorbing state
func (t *TimeStep) Terminal() bool {
	return t.Last() && t.end == TerminalStateReached
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"State: %v  |  Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Discount, t.Observation,
		t.Number)
}

// Transition is a single (s, a, r, γ, s') tuple of experience
type Transition struct {
	State     int
	Action    int
	Reward    float64
	Discount  float64
	NextState int
	Terminal  bool
}

// NewTransition constructs the Transition between two consecutive
// TimeSteps when action was taken in the first
func NewTransition(step TimeStep, action int, next TimeStep) Transition {
	return Transition{
		State:     step.Observation,
		Action:    action,
		Reward:    next.Reward,
		Discount:  next.Discount,
		NextState: next.Observation,
		Terminal:  next.Terminal(),
	}
}
