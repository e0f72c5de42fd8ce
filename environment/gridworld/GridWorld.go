// Package gridworld implements square gridworld environments with
// absorbing terminal states
//
// States of an n x n gridworld are the integers [0, n*n), where state s
// lies in row s / n and column s % n. The dynamics are described by a
// Model, which the dynamic programming solvers use directly and which
// the GridWorld environment steps through for model-free agents.
package gridworld

import (
	"errors"
	"fmt"

	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/timestep"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// GridWorld represents a gridworld environment. With a slip
// probability p > 0, the chosen action is replaced by a uniformly
// random action with probability p, making the environment stochastic.
type GridWorld struct {
	environment.Task
	model Model

	slip     float64
	slipped  distuv.Bernoulli
	noise    distuv.Categorical
	discount float64

	currentStep timestep.TimeStep
}

// New creates a new gridworld with dynamics model, task t, discount
// factor discount, and slip probability slip. The environment is reset
// and ready to use, and its first TimeStep is returned.
func New(model Model, t environment.Task, discount, slip float64,
	seed uint64) (*GridWorld, timestep.TimeStep, error) {
	if slip < 0 || slip > 1 {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: slip probability "+
			"%v not in [0, 1]", slip)
	}
	if discount < 0 || discount > 1 {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: discount %v "+
			"not in [0, 1]", discount)
	}

	source := rand.NewSource(seed)
	weights := make([]float64, NumActions)
	for i := range weights {
		weights[i] = 1.0 / float64(NumActions)
	}

	g := &GridWorld{
		Task:     t,
		model:    model,
		slip:     slip,
		slipped:  distuv.Bernoulli{P: slip, Src: source},
		noise:    distuv.NewCategorical(weights, source),
		discount: discount,
	}

	step, err := g.Reset()
	if err != nil {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: %w", err)
	}
	return g, step, nil
}

// Reset resets the environment to a starting state and returns the
// first TimeStep of the new episode
func (g *GridWorld) Reset() (timestep.TimeStep, error) {
	start := g.Start()
	if start < 0 || start >= g.model.States() {
		return timestep.TimeStep{}, fmt.Errorf("reset: starting state %d "+
			"not in [0, %d)", start, g.model.States())
	}

	startStep := timestep.New(timestep.First, 0, g.discount, start, 0)
	g.currentStep = startStep
	return startStep, nil
}

// Step takes one environmental step given some action and returns the
// next TimeStep along with whether or not the episode has ended
func (g *GridWorld) Step(action int) (timestep.TimeStep, bool, error) {
	if err := environment.ValidateAction(g, action); err != nil {
		return timestep.TimeStep{}, false, err
	}
	if g.currentStep.Last() {
		return g.currentStep, true, errors.New("step: episode has ended, " +
			"call Reset to start a new episode")
	}

	taken := Action(action)
	if g.slip > 0 && g.slipped.Rand() == 1.0 {
		taken = Action(g.noise.Rand())
	}

	state := g.currentStep.Observation
	next := g.model.Next(state, taken)

	// The reward is attributed to the action the agent chose
	reward := g.GetReward(state, action, next)
	step := timestep.New(timestep.Mid, reward, g.discount, next,
		g.currentStep.Number+1)

	last := g.End(&step)
	g.currentStep = step

	return step, last, nil
}

// CurrentTimeStep returns the current TimeStep of the environment
func (g *GridWorld) CurrentTimeStep() timestep.TimeStep {
	return g.currentStep
}

// Model returns the dynamics of the environment
func (g *GridWorld) Model() Model {
	return g.model
}

// Slip returns the probability that an action is replaced by a random
// one
func (g *GridWorld) Slip() float64 {
	return g.slip
}

// Coordinates returns the current (row, col) position of the agent
func (g *GridWorld) Coordinates() (int, int) {
	return Coordinates(g.currentStep.Observation, g.model.Size())
}

// RewardSpec returns the reward specification of the environment
func (g *GridWorld) RewardSpec() environment.Spec {
	return environment.NewSpec(environment.Reward, g.Min(), g.Max(),
		environment.Continuous)
}

// DiscountSpec returns the discount specification of the environment
func (g *GridWorld) DiscountSpec() environment.Spec {
	return environment.NewSpec(environment.Discount, g.discount, g.discount,
		environment.Continuous)
}

// ObservationSpec returns the observation specification of the
// environment
func (g *GridWorld) ObservationSpec() environment.Spec {
	return environment.NewDiscreteSpec(environment.Observation,
		g.model.States())
}

// ActionSpec returns the action specification of the environment
func (g *GridWorld) ActionSpec() environment.Spec {
	return environment.NewDiscreteSpec(environment.Action, NumActions)
}

func (g *GridWorld) String() string {
	str := "GridWorld | At: %v  |  %v  |  Bounds: (%d, %d)  |  Slip: %.2f"
	row, col := g.Coordinates()
	position := fmt.Sprintf("(%d, %d)", row, col)

	return fmt.Sprintf(str, position, g.Task, g.model.Size(), g.model.Size(),
		g.slip)
}
