package gridworld

import (
	"fmt"

	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/timestep"
)

// StepReward is the reward for every move out of a non-terminal state
const StepReward = -1.0

// Goal represents the task of reaching one of the terminal states of a
// grid. Every transition out of a non-terminal state is rewarded with
// the same time step reward.
type Goal struct {
	environment.Starter
	ender environment.Enders

	model          Model
	timeStepReward float64
}

// NewGoal creates and returns a new Goal over the terminal states of
// model. Episodes start in a state sampled by s and are cut off after
// cutoff steps if cutoff > 0.
func NewGoal(s environment.Starter, model Model, cutoff int,
	timeStepReward float64) *Goal {
	atGoal := environment.NewFunctionEnder(model.Terminal,
		timestep.TerminalStateReached)

	return &Goal{
		Starter:        s,
		ender:          environment.Enders{atGoal, environment.NewStepLimit(cutoff)},
		model:          model,
		timeStepReward: timeStepReward,
	}
}

// NewNonTerminalStarter returns a Starter which samples starting states
// uniformly from the non-terminal states of model
func NewNonTerminalStarter(model Model, seed uint64) (environment.Starter,
	error) {
	starter, err := environment.NewCategoricalStarter(
		model.NonTerminalStates(), seed)
	if err != nil {
		return nil, fmt.Errorf("newNonTerminalStarter: %w", err)
	}
	return starter, nil
}

// GetReward returns the reward for taking action in state and landing
// in nextState
func (g *Goal) GetReward(state, action, nextState int) float64 {
	if g.model.Terminal(state) {
		return 0.0
	}
	return g.timeStepReward
}

// End determines whether or not the current episode should be ended,
// returning a boolean to indicate episode temrination. Reaching a goal
// takes precedence over the step limit.
func (g *Goal) End(t *timestep.TimeStep) bool {
	return g.ender.End(t)
}

// AtGoal returns whether state is a goal state
func (g *Goal) AtGoal(state int) bool {
	return g.model.Terminal(state)
}

// Min returns the minimum reward attainable in the Task
func (g *Goal) Min() float64 {
	return g.timeStepReward
}

// Max returns the maximum reward attainable in the Task
func (g *Goal) Max() float64 {
	return g.timeStepReward
}

// String returns the Goal as a string
func (g *Goal) String() string {
	return fmt.Sprintf("Goal | States: %v  |  Reward: %.2f",
		g.model.TerminalStates(), g.timeStepReward)
}
