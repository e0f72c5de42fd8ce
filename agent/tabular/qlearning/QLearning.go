// Package qlearning implements the tabular Q-Learning algorithm.
//
// Action values are stored in a table with one row per action and one
// column per state. The behaviour policy is ε-greedy and the target
// policy is greedy with respect to the table.
package qlearning

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/samuelfneumann/tabular/agent/tabular/policy"
	"github.com/samuelfneumann/tabular/environment"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// QLearning implements the Q-Learning algorithm
type QLearning struct {
	*QLearner
	*policy.EGreedy // behaviour policy
	target          *policy.EGreedy
	qTable          *mat.Dense
	config          Config
	seed            uint64
}

// New creates a new QLearning agent for env. The environment must have
// discrete observations and actions.
func New(env environment.Environment, c Config, seed uint64) (*QLearning,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	obsSpec, actionSpec := env.ObservationSpec(), env.ActionSpec()
	if obsSpec.Cardinality != environment.Discrete {
		return nil, fmt.Errorf("new: cannot use tabular Q-Learning with " +
			"continuous observations")
	}
	if actionSpec.Cardinality != environment.Discrete {
		return nil, fmt.Errorf("new: cannot use tabular Q-Learning with " +
			"continuous actions")
	}

	qTable := mat.NewDense(actionSpec.Len(), obsSpec.Len(), nil)
	return newQLearning(qTable, c, seed)
}

func newQLearning(qTable *mat.Dense, c Config, seed uint64) (*QLearning,
	error) {
	// Create algorithm components using previous specifications
	behaviour, err := policy.NewEGreedy(c.Epsilon, seed, qTable)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	target := policy.NewGreedy(seed, qTable)

	learner, err := NewQLearner(qTable, c.LearningRate, c.Discount)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return &QLearning{learner, behaviour, target, qTable, c, seed}, nil
}

// Config returns the Config of the agent
func (q *QLearning) Config() Config {
	return q.config
}

// QTable returns a copy of the action values, with one row per action
// and one column per state
func (q *QLearning) QTable() *mat.Dense {
	return mat.DenseCopyOf(q.qTable)
}

// Target returns the greedy target policy of the agent
func (q *QLearning) Target() *policy.EGreedy {
	return q.target
}

// GreedyPolicy returns the greedy action in each state. Ties are broken
// in favour of the lowest action index.
func (q *QLearning) GreedyPolicy() []int {
	actions, states := q.qTable.Dims()
	values := make([]float64, actions)

	greedy := make([]int, states)
	for s := range greedy {
		mat.Col(values, s, q.qTable)
		greedy[s] = floats.MaxIdx(values)
	}
	return greedy
}

// StateValues returns the value of the greedy action in each state
func (q *QLearning) StateValues() []float64 {
	actions, states := q.qTable.Dims()
	values := make([]float64, actions)

	v := make([]float64, states)
	for s := range v {
		mat.Col(values, s, q.qTable)
		v[s] = floats.Max(values)
	}
	return v
}

// checkpoint is the gob encoded form of a QLearning agent
type checkpoint struct {
	Config Config
	Seed   uint64
	Eval   bool
	QTable []byte
}

// GobEncode implements the gob.GobEncoder interface
func (q *QLearning) GobEncode() ([]byte, error) {
	table, err := q.qTable.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("gobEncode: %w", err)
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	err = enc.Encode(checkpoint{q.config, q.seed, q.IsEval(), table})
	if err != nil {
		return nil, fmt.Errorf("gobEncode: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The random state
// of the behaviour policy is reset from the stored seed.
func (q *QLearning) GobDecode(data []byte) error {
	var c checkpoint
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&c); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	var table mat.Dense
	if err := table.UnmarshalBinary(c.QTable); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	decoded, err := newQLearning(&table, c.Config, c.Seed)
	if err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}
	if c.Eval {
		decoded.Eval()
	}

	*q = *decoded
	return nil
}
