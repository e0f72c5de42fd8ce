package qlearning

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"testing"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/environment/gridworld"
	"github.com/samuelfneumann/tabular/solver"
	"github.com/samuelfneumann/tabular/timestep"
	"github.com/stretchr/testify/require"
)

func newGridWorld(t testing.TB, starter environment.Starter,
	discount float64) *gridworld.GridWorld {
	t.Helper()

	m, err := gridworld.NewModel(4, []int{0, 15})
	require.NoError(t, err)

	if starter == nil {
		starter, err = gridworld.NewNonTerminalStarter(m, 11)
		require.NoError(t, err)
	}

	task := gridworld.NewGoal(starter, m, 100, -1.0)
	env, _, err := gridworld.New(m, task, discount, 0, 3)
	require.NoError(t, err)
	return env
}

func TestUpdate(t *testing.T) {
	env := newGridWorld(t, environment.NewSingleStarter(5), 0.9)
	q, err := New(env, Config{Epsilon: 0, LearningRate: 0.5, Discount: 0.9},
		0)
	require.NoError(t, err)

	step, err := env.Reset()
	require.NoError(t, err)
	require.NoError(t, q.ObserveFirst(step))

	// All action values are equal, so the first action is chosen
	action := q.SelectAction(step)
	require.Equal(t, int(gridworld.Up), action)

	step, _, err = env.Step(action)
	require.NoError(t, err)
	require.Equal(t, 1, step.Observation)
	require.NoError(t, q.Observe(action, step))
	require.NoError(t, q.Step())

	table := q.QTable()
	require.InDelta(t, -0.5, table.At(int(gridworld.Up), 5), 1e-12)

	// Bumping into the wall
	action = q.SelectAction(step)
	require.Equal(t, int(gridworld.Up), action)
	step, _, err = env.Step(action)
	require.NoError(t, err)
	require.NoError(t, q.Observe(action, step))
	require.NoError(t, q.Step())
	require.InDelta(t, -0.5, q.QTable().At(int(gridworld.Up), 1), 1e-12)

	// The next greedy action avoids the wall
	require.Equal(t, int(gridworld.Right), q.SelectAction(step))

	// Modifying the returned copy does not change the agent
	table.Set(0, 0, 100)
	require.Equal(t, 0.0, q.QTable().At(0, 0))
}

func TestTdError(t *testing.T) {
	env := newGridWorld(t, nil, 0.5)
	q, err := New(env, Config{Epsilon: 0.1, LearningRate: 0.1, Discount: 0.5},
		0)
	require.NoError(t, err)

	q.qTable.Set(2, 6, 4.0)
	q.qTable.Set(1, 3, 1.0)

	tr := timestep.Transition{State: 3, Action: 1, Reward: -1, NextState: 6}
	require.InDelta(t, -1+0.5*4.0-1.0, q.TdError(tr), 1e-12)

	var errorer agent.TdErrorer = q
	require.Equal(t, q.TdError(tr), errorer.TdError(tr))
}

func TestStepWithoutTransition(t *testing.T) {
	env := newGridWorld(t, nil, 0.9)
	q, err := New(env, DefaultConfig(), 0)
	require.NoError(t, err)

	step, err := env.Reset()
	require.NoError(t, err)
	require.NoError(t, q.ObserveFirst(step))
	require.Error(t, q.Step())
	require.Error(t, q.Observe(gridworld.NumActions, step))
}

func TestLearnsOptimalValues(t *testing.T) {
	const gamma = 0.9
	env := newGridWorld(t, nil, gamma)
	q, err := New(env, Config{Epsilon: 0.3, LearningRate: 0.5,
		Discount: gamma}, 5)
	require.NoError(t, err)

	for episode := 0; episode < 2000; episode++ {
		step, err := env.Reset()
		require.NoError(t, err)
		require.NoError(t, q.ObserveFirst(step))

		for !step.Last() {
			action := q.SelectAction(step)
			step, _, err = env.Step(action)
			require.NoError(t, err)
			require.NoError(t, q.Observe(action, step))
			require.NoError(t, q.Step())
		}
		q.EndEpisode()
	}

	want, _, _, err := solver.ValueIteration(env.Model(), gamma, 1e-8)
	require.NoError(t, err)

	v := q.StateValues()
	greedy := q.GreedyPolicy()
	m := env.Model()
	for s := range v {
		if m.Terminal(s) {
			require.Equal(t, 0.0, v[s])
			continue
		}
		require.InDelta(t, want[s], v[s], 0.05, "state %d", s)

		next := m.Next(s, gridworld.Action(greedy[s]))
		require.InDelta(t, want[s], -1+gamma*want[next], 0.05,
			"greedy action %v in state %d", gridworld.Action(greedy[s]), s)
	}
}

func TestEvalIsGreedy(t *testing.T) {
	env := newGridWorld(t, environment.NewSingleStarter(5), 0.9)
	q, err := New(env, Config{Epsilon: 1, LearningRate: 0.1, Discount: 0.9},
		0)
	require.NoError(t, err)
	q.qTable.Set(int(gridworld.Down), 5, 1.0)

	q.Eval()
	require.True(t, q.IsEval())
	step, err := env.Reset()
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		require.Equal(t, int(gridworld.Down), q.SelectAction(step))
	}
	require.Equal(t, int(gridworld.Down), q.Target().SelectAction(step))

	q.Train()
	require.False(t, q.IsEval())
}

func TestGob(t *testing.T) {
	env := newGridWorld(t, nil, 0.9)
	q, err := New(env, DefaultConfig(), 9)
	require.NoError(t, err)
	q.qTable.Set(3, 7, -2.5)
	q.Eval()

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(q))

	var decoded QLearning
	require.NoError(t, gob.NewDecoder(&buf).Decode(&decoded))

	require.Equal(t, q.Config(), decoded.Config())
	require.True(t, decoded.IsEval())
	require.Equal(t, q.QTable().RawMatrix().Data,
		decoded.QTable().RawMatrix().Data)

	// The decoded learner and policies share one table
	decoded.qTable.Set(1, 7, 10)
	step := timestep.New(timestep.First, 0, 0.9, 7, 0)
	require.Equal(t, 1, decoded.SelectAction(step))
}

func TestConfig(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	invalid := []Config{
		{Epsilon: -0.1, LearningRate: 0.1, Discount: 0.9},
		{Epsilon: 1.1, LearningRate: 0.1, Discount: 0.9},
		{Epsilon: 0.1, LearningRate: 0, Discount: 0.9},
		{Epsilon: 0.1, LearningRate: 1.5, Discount: 0.9},
		{Epsilon: 0.1, LearningRate: 0.1, Discount: -1},
	}
	env := newGridWorld(t, nil, 0.9)
	for _, c := range invalid {
		require.Error(t, c.Validate(), "%+v", c)

		_, err := c.CreateAgent(env, 0)
		require.Error(t, err, "%+v", c)
	}

	a, err := DefaultConfig().CreateAgent(env, 0)
	require.NoError(t, err)
	require.True(t, DefaultConfig().ValidAgent(a))
}

func TestTypedConfig(t *testing.T) {
	typed := agent.NewTypedConfig(DefaultConfig())
	data, err := json.Marshal(typed)
	require.NoError(t, err)

	require.True(t, agent.Registered(agent.EGreedyQLearningTabular))

	var decoded agent.TypedConfig
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, agent.EGreedyQLearningTabular, decoded.Type)
	require.Equal(t, DefaultConfig(), decoded.Config)

	err = json.Unmarshal([]byte(`{"Type": "Sarsa", "Config": {}}`), &decoded)
	require.Error(t, err)
}
