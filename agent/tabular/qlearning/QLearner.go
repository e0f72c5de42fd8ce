package qlearning

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samuelfneumann/tabular/timestep"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// QLearner implements the update functionality for the Q-Learning
// algorithm.
type QLearner struct {
	qTable       *mat.Dense
	step         timestep.TimeStep
	action       int
	nextStep     timestep.TimeStep
	learningRate float64
	discount     float64

	nextValues []float64
}

// NewQLearner creates a new QLearner struct
//
// qTable holds the action values to learn, with one row per action and
// one column per state
func NewQLearner(qTable *mat.Dense, learningRate,
	discount float64) (*QLearner, error) {
	if learningRate <= 0 || learningRate > 1 {
		return nil, fmt.Errorf("newQLearner: learning rate %v not in (0, 1]",
			learningRate)
	}
	if discount < 0 || discount > 1 {
		return nil, fmt.Errorf("newQLearner: discount %v not in [0, 1]",
			discount)
	}
	actions, _ := qTable.Dims()

	return &QLearner{
		qTable:       qTable,
		learningRate: learningRate,
		discount:     discount,
		nextValues:   make([]float64, actions),
	}, nil
}

// ObserveFirst observes and records the first episodic timestep
func (q *QLearner) ObserveFirst(t timestep.TimeStep) error {
	if !t.First() {
		log.Warn().Msgf("ObserveFirst() should only be called on the "+
			"first timestep (current timestep = %d)", t.Number)
	}
	q.step = timestep.TimeStep{}
	q.nextStep = t
	return nil
}

// Observe observes and records any timestep other than the first timestep
func (q *QLearner) Observe(action int, nextStep timestep.TimeStep) error {
	actions, _ := q.qTable.Dims()
	if action < 0 || action >= actions {
		return fmt.Errorf("observe: action %d not in [0, %d)", action,
			actions)
	}

	q.step = q.nextStep
	q.action = action
	q.nextStep = nextStep
	return nil
}

// Step updates the action values of the Agent's Learner and Policy
//
//	Q(s, a) += α * (r + γ * max_a' Q(s', a') - Q(s, a))
//
// The bootstrap term is always taken from the next state. Absorbing
// states are never acted in, so their action values stay at zero.
func (q *QLearner) Step() error {
	if q.nextStep.First() {
		return fmt.Errorf("step: no transition observed since the first " +
			"timestep of the episode")
	}

	tdError := q.TdError(timestep.NewTransition(q.step, q.action,
		q.nextStep))

	state := q.step.Observation
	current := q.qTable.At(q.action, state)
	q.qTable.Set(q.action, state, current+q.learningRate*tdError)

	return nil
}

// TdError returns the TD error of the transition t
func (q *QLearner) TdError(t timestep.Transition) float64 {
	mat.Col(q.nextValues, t.NextState, q.qTable)
	target := t.Reward + q.discount*floats.Max(q.nextValues)

	return target - q.qTable.At(t.Action, t.State)
}

// EndEpisode performs cleanup at the end of an episode
func (q *QLearner) EndEpisode() {}
