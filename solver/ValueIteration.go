package solver

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/tabular/environment/gridworld"
	"gonum.org/v1/gonum/floats"
)

// StepReward is the reward of every backup of a non-terminal state
const StepReward = gridworld.StepReward

// ValueIteration computes the optimal state value function of model
// with discount factor gamma, along with a greedy policy with respect
// to it. Values are zero initialised and updated with synchronous
// sweeps
//
//	V'(s) = max_a [StepReward + gamma * V(next(s, a))]
//
// until the largest change in a sweep is at most theta. Terminal states
// keep a value of 0 and take NoAction. The number of sweeps performed is
// also returned.
//
// With gamma == 1, at least one terminal state must exist or the values
// never converge. WithMaxIterations bounds the number of sweeps, in
// which case the values and policy of the last sweep are returned along
// with ErrNotConverged.
func ValueIteration(model gridworld.Model, gamma, theta float64,
	opts ...Option) (Values, Policy, int, error) {
	if err := validateParams(model, gamma, theta); err != nil {
		return nil, nil, 0, fmt.Errorf("valueIteration: %w", err)
	}
	o := newOptions(opts)
	if o.maxIterations < 0 {
		return nil, nil, 0, fmt.Errorf("valueIteration: %w: max "+
			"iterations %d < 0", ErrInvalidConfig, o.maxIterations)
	}

	v := make(Values, model.States())
	q := make([]float64, gridworld.NumActions)

	for sweep := 1; ; sweep++ {
		next := make(Values, model.States())
		for s := range next {
			if model.Terminal(s) {
				continue
			}
			lookahead(model, s, gamma, v, q)
			next[s] = floats.Max(q)
		}

		delta := floats.Distance(next, v, math.Inf(1))
		v = next
		o.observe(sweep, delta)

		if delta <= theta {
			return v, Greedy(model, gamma, v), sweep, nil
		}
		if o.maxIterations > 0 && sweep >= o.maxIterations {
			return v, Greedy(model, gamma, v), sweep, fmt.Errorf(
				"valueIteration: %w after %d sweeps (delta %v > theta %v)",
				ErrNotConverged, sweep, delta, theta)
		}
	}
}

// Greedy returns the policy which is greedy with respect to the state
// values v of model. Ties are broken in favour of the action which
// comes first in gridworld.Actions.
func Greedy(model gridworld.Model, gamma float64, v Values) Policy {
	policy := make(Policy, model.States())
	q := make([]float64, gridworld.NumActions)

	for s := range policy {
		if model.Terminal(s) {
			policy[s] = NoAction()
			continue
		}
		lookahead(model, s, gamma, v, q)
		policy[s] = Act(gridworld.Actions[floats.MaxIdx(q)])
	}
	return policy
}

// lookahead fills q with the one-step discounted lookahead of every
// action in state s
func lookahead(model gridworld.Model, s int, gamma float64, v Values,
	q []float64) {
	for i, a := range gridworld.Actions {
		q[i] = StepReward + gamma*v[model.Next(s, a)]
	}
}

// validateParams checks the parameters shared by all engines
func validateParams(model gridworld.Model, gamma, theta float64) error {
	if model.States() == 0 {
		return fmt.Errorf("%w: empty model", ErrInvalidConfig)
	}
	if !(gamma > 0 && gamma <= 1) {
		return fmt.Errorf("%w: gamma %v not in (0, 1]", ErrInvalidConfig,
			gamma)
	}
	if !(theta > 0) {
		return fmt.Errorf("%w: theta %v must be positive", ErrInvalidConfig,
			theta)
	}
	return nil
}
