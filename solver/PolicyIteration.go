package solver

import (
	"fmt"

	"github.com/samuelfneumann/tabular/environment/gridworld"
	"gonum.org/v1/gonum/floats"
)

// PolicyIteration computes an optimal policy of model with discount
// factor gamma. Starting from the policy which always moves Up, it
// alternates between evaluating the current policy with EvaluatePolicy
// (using theta and evalMaxIterations) and improving it greedily, until
// an improvement step changes no Decision. The values of the final
// policy, the policy, and the number of outer iterations are returned.
//
// The greedy improvement uses the same tie breaking as Greedy.
// WithMaxIterations bounds the number of outer iterations.
func PolicyIteration(model gridworld.Model, gamma, theta float64,
	evalMaxIterations int, opts ...Option) (Values, Policy, int, error) {
	if err := validateParams(model, gamma, theta); err != nil {
		return nil, nil, 0, fmt.Errorf("policyIteration: %w", err)
	}
	if evalMaxIterations <= 0 {
		return nil, nil, 0, fmt.Errorf("policyIteration: %w: evaluation "+
			"max iterations %d must be positive", ErrInvalidConfig,
			evalMaxIterations)
	}
	o := newOptions(opts)
	if o.maxIterations < 0 {
		return nil, nil, 0, fmt.Errorf("policyIteration: %w: max "+
			"iterations %d < 0", ErrInvalidConfig, o.maxIterations)
	}

	policy := NewConstantPolicy(model, gridworld.Up)
	q := make([]float64, gridworld.NumActions)

	for iter := 1; ; iter++ {
		v, _ := evaluate(policy, model, gamma, theta, evalMaxIterations, o)

		stable := true
		for s := range policy {
			if model.Terminal(s) {
				continue
			}
			lookahead(model, s, gamma, v, q)
			best := Act(gridworld.Actions[floats.MaxIdx(q)])
			if best != policy[s] {
				policy[s] = best
				stable = false
			}
		}

		if stable {
			return v, policy, iter, nil
		}
		if o.maxIterations > 0 && iter >= o.maxIterations {
			return v, policy, iter, fmt.Errorf("policyIteration: %w after "+
				"%d iterations", ErrNotConverged, iter)
		}
	}
}
