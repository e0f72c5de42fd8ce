// Package policy implements policies over tables of action values
package policy

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/tabular/timestep"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// EGreedy implements an ε-greedy policy over a table of action values.
// The table has one row per action and one column per state, so that
// column s holds the action values of state s.
//
// In evaluation mode the policy is always greedy.
type EGreedy struct {
	qTable  *mat.Dense
	epsilon float64
	seed    rand.Source // Seed for random number generation
	eval    bool

	actionValues []float64
	probs        []float64
}

// NewEGreedy constructs a new EGreedy policy, where e=epislon is the
// probability with which a random action is selected. The policy
// selects actions using qTable, which is shared with and updated by
// some learner.
func NewEGreedy(e float64, seed uint64, qTable *mat.Dense) (*EGreedy, error) {
	if e < 0 || e > 1 {
		return nil, fmt.Errorf("newEGreedy: epsilon %v not in [0, 1]", e)
	}
	actions, _ := qTable.Dims()

	return &EGreedy{
		qTable:       qTable,
		epsilon:      e,
		seed:         rand.NewSource(seed),
		actionValues: make([]float64, actions),
		probs:        make([]float64, actions),
	}, nil
}

// SelectAction selects an action from an ε-greedy policy
func (p *EGreedy) SelectAction(t timestep.TimeStep) int {
	p.ActionValues(t.Observation, p.actionValues)

	// Find the greedy action, ties go to the lowest index
	greedyAction := floats.MaxIdx(p.actionValues)
	if p.eval || p.epsilon == 0 {
		return greedyAction
	}

	// Calculate the ε probability of choosing any action at random
	numActions := len(p.probs)
	prob := p.epsilon / float64(numActions)
	for i := range p.probs {
		p.probs[i] = prob
	}

	// Adjust the probability of choosing the greedy action
	p.probs[greedyAction] += 1.0 - p.epsilon

	// Construct a categorical distribution over actions using action
	// probabilities and sample an action
	dist := distuv.NewCategorical(p.probs, p.seed)
	return int(dist.Rand())
}

// ActionValues fills dst with the action values of state and returns
// it. If dst is nil, a new slice is allocated.
func (p *EGreedy) ActionValues(state int, dst []float64) []float64 {
	return mat.Col(dst, state, p.qTable)
}

// Epsilon returns the exploration probability of the policy
func (p *EGreedy) Epsilon() float64 {
	return p.epsilon
}

// SetEpsilon sets the exploration probability of the policy
func (p *EGreedy) SetEpsilon(e float64) error {
	if e < 0 || e > 1 {
		return fmt.Errorf("setEpsilon: epsilon %v not in [0, 1]", e)
	}
	p.epsilon = e
	return nil
}

// Eval sets the policy to evaluation mode, in which it acts greedily
func (p *EGreedy) Eval() {
	p.eval = true
}

// Train sets the policy to training mode
func (p *EGreedy) Train() {
	p.eval = false
}

// IsEval returns whether the policy is in evaluation mode
func (p *EGreedy) IsEval() bool {
	return p.eval
}
