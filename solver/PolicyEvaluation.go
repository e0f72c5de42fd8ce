package solver

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/tabular/environment/gridworld"
	"gonum.org/v1/gonum/floats"
)

// DefaultEvalMaxIterations is the default cap on the number of sweeps
// of policy evaluation
const DefaultEvalMaxIterations = 1000

// EvaluatePolicy computes the state value function of policy in model
// with discount factor gamma. Values are zero initialised and updated
// with synchronous sweeps
//
//	V'(s) = StepReward + gamma * V(next(s, policy[s]))
//
// until the largest change in a sweep is at most theta, or until
// maxIterations sweeps have been performed. Reaching maxIterations is
// not an error: the values of the last sweep are returned.
//
// Every non-terminal state of policy must take an action. Decisions of
// terminal states are ignored.
func EvaluatePolicy(policy Policy, model gridworld.Model, gamma, theta float64,
	maxIterations int, opts ...Option) (Values, error) {
	if err := validateParams(model, gamma, theta); err != nil {
		return nil, fmt.Errorf("evaluatePolicy: %w", err)
	}
	if maxIterations <= 0 {
		return nil, fmt.Errorf("evaluatePolicy: %w: max iterations %d "+
			"must be positive", ErrInvalidConfig, maxIterations)
	}
	if err := validatePolicy(policy, model); err != nil {
		return nil, fmt.Errorf("evaluatePolicy: %w", err)
	}

	v, _ := evaluate(policy, model, gamma, theta, maxIterations,
		newOptions(opts))
	return v, nil
}

// evaluate runs policy evaluation on validated inputs and returns the
// values along with the number of sweeps performed
func evaluate(policy Policy, model gridworld.Model, gamma, theta float64,
	maxIterations int, o options) (Values, int) {
	v := make(Values, model.States())

	for sweep := 1; ; sweep++ {
		next := make(Values, model.States())
		for s := range next {
			if model.Terminal(s) {
				continue
			}
			a, _ := policy[s].Action()
			next[s] = StepReward + gamma*v[model.Next(s, a)]
		}

		delta := floats.Distance(next, v, math.Inf(1))
		v = next
		o.observe(sweep, delta)

		if delta <= theta || sweep >= maxIterations {
			return v, sweep
		}
	}
}

// validatePolicy checks that policy has an action for every
// non-terminal state of model
func validatePolicy(policy Policy, model gridworld.Model) error {
	if len(policy) != model.States() {
		return fmt.Errorf("%w: policy has %d entries, want %d",
			ErrInvalidConfig, len(policy), model.States())
	}

	for s, d := range policy {
		if model.Terminal(s) {
			continue
		}
		a, ok := d.Action()
		if !ok {
			return fmt.Errorf("%w: no action in non-terminal state %d",
				ErrInvalidConfig, s)
		}
		if !a.Valid() {
			return fmt.Errorf("%w: invalid action %v in state %d",
				ErrInvalidConfig, a, s)
		}
	}
	return nil
}
