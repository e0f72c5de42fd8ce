package solver

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/samuelfneumann/tabular/environment/gridworld"
	"github.com/stretchr/testify/require"
)

func newModel(t testing.TB, n int, terminals ...int) gridworld.Model {
	t.Helper()
	m, err := gridworld.NewModel(n, terminals)
	require.NoError(t, err)
	return m
}

// distance returns the Manhattan distance from s to the closest of
// the corner terminal states of a 4 x 4 grid
func distance(s int) int {
	row, col := gridworld.Coordinates(s, 4)
	toFirst := row + col
	toLast := (3 - row) + (3 - col)
	return min(toFirst, toLast)
}

func TestValueIterationUndiscounted(t *testing.T) {
	m := newModel(t, 4, 0, 15)

	v, p, sweeps, err := ValueIteration(m, 1.0, 1e-4)
	require.NoError(t, err)
	require.Equal(t, 4, sweeps)

	for s := range v {
		require.InDelta(t, -float64(distance(s)), v[s], 1e-9, "state %d", s)
	}
	require.Equal(t, -2.0, v[5])

	// Up and Left are both optimal in state 5, Up comes first
	require.Equal(t, Act(gridworld.Up), p[5])
	require.Equal(t, Act(gridworld.Left), p[1])
	require.Equal(t, Act(gridworld.Right), p[14])
	require.Equal(t, Act(gridworld.Down), p[11])
}

func TestValueIterationDiscounted(t *testing.T) {
	m := newModel(t, 4, 0, 15)

	for _, gamma := range []float64{0.9, 0.8} {
		t.Run(fmt.Sprintf("gamma %v", gamma), func(t *testing.T) {
			v, _, _, err := ValueIteration(m, gamma, 1e-4)
			require.NoError(t, err)

			for s := range v {
				// Geometric sum of d rewards of -1
				want := 0.0
				for k := 0; k < distance(s); k++ {
					want -= pow(gamma, k)
				}
				require.InDelta(t, want, v[s], 1e-4, "state %d", s)
			}
		})
	}
}

func pow(x float64, k int) float64 {
	r := 1.0
	for i := 0; i < k; i++ {
		r *= x
	}
	return r
}

func TestValueIterationTerminals(t *testing.T) {
	m := newModel(t, 5, 3, 12, 24)

	v, p, _, err := ValueIteration(m, 0.8, 1e-6)
	require.NoError(t, err)

	for _, s := range m.TerminalStates() {
		require.Equal(t, 0.0, v[s])
		require.Equal(t, NoAction(), p[s])
	}
	for _, s := range m.NonTerminalStates() {
		require.True(t, p[s].IsAction(), "state %d", s)
		require.Less(t, v[s], 0.0)
	}
}

func TestValueIterationDeltasNonIncreasing(t *testing.T) {
	m := newModel(t, 6, 0)

	var deltas []float64
	obs := func(sweep int, delta float64) {
		require.Equal(t, len(deltas)+1, sweep)
		deltas = append(deltas, delta)
	}

	_, _, sweeps, err := ValueIteration(m, 0.95, 1e-8, WithObserver(obs))
	require.NoError(t, err)
	require.Len(t, deltas, sweeps)

	for i := 1; i < len(deltas); i++ {
		require.LessOrEqual(t, deltas[i], deltas[i-1])
	}
	require.LessOrEqual(t, deltas[len(deltas)-1], 1e-8)
}

func TestValueIterationNotConverged(t *testing.T) {
	t.Run("no terminal states", func(t *testing.T) {
		m := newModel(t, 3)

		v, p, sweeps, err := ValueIteration(m, 1.0, 1e-4,
			WithMaxIterations(25))
		require.ErrorIs(t, err, ErrNotConverged)
		require.Equal(t, 25, sweeps)
		require.Equal(t, -25.0, v[4])
		require.Len(t, p, 9)
	})

	t.Run("cap too small", func(t *testing.T) {
		m := newModel(t, 4, 0, 15)

		_, _, sweeps, err := ValueIteration(m, 1.0, 1e-4,
			WithMaxIterations(2))
		require.ErrorIs(t, err, ErrNotConverged)
		require.Equal(t, 2, sweeps)
	})
}

func TestInvalidConfig(t *testing.T) {
	m := newModel(t, 4, 0, 15)

	tests := []struct {
		name  string
		model gridworld.Model
		gamma float64
		theta float64
	}{
		{"zero gamma", m, 0, 1e-4},
		{"gamma above one", m, 1.1, 1e-4},
		{"zero theta", m, 0.9, 0},
		{"negative theta", m, 0.9, -1},
		{"empty model", gridworld.Model{}, 0.9, 1e-4},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, _, err := ValueIteration(test.model, test.gamma, test.theta)
			require.ErrorIs(t, err, ErrInvalidConfig)

			_, _, _, err = PolicyIteration(test.model, test.gamma, test.theta,
				DefaultEvalMaxIterations)
			require.ErrorIs(t, err, ErrInvalidConfig)

			p := NewConstantPolicy(m, gridworld.Up)
			_, err = EvaluatePolicy(p, test.model, test.gamma, test.theta,
				DefaultEvalMaxIterations)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestEvaluatePolicy(t *testing.T) {
	m := newModel(t, 4, 0, 15)
	up := NewConstantPolicy(m, gridworld.Up)

	t.Run("always up converges", func(t *testing.T) {
		v, err := EvaluatePolicy(up, m, 0.9, 1e-4, 1000)
		require.NoError(t, err)

		require.Equal(t, 0.0, v[0])
		require.Equal(t, 0.0, v[15])
		require.InDelta(t, -1.0, v[4], 1e-9)
		require.InDelta(t, -1.9, v[8], 1e-9)
		require.InDelta(t, -2.71, v[12], 1e-9)

		// Every other state ends up bumping into the top wall forever
		for _, s := range []int{1, 2, 3, 5, 6, 7, 9, 10, 11, 13, 14} {
			require.InDelta(t, -10.0, v[s], 1e-2, "state %d", s)
		}
	})

	t.Run("single sweep", func(t *testing.T) {
		v, err := EvaluatePolicy(up, m, 0.9, 1e-4, 1)
		require.NoError(t, err)

		for s := range v {
			if m.Terminal(s) {
				require.Equal(t, 0.0, v[s])
			} else {
				require.Equal(t, -1.0, v[s])
			}
		}
	})

	t.Run("cap is not an error", func(t *testing.T) {
		v, err := EvaluatePolicy(up, m, 1.0, 1e-4, 50)
		require.NoError(t, err)
		require.Equal(t, -50.0, v[3])
		require.Equal(t, -1.0, v[4])
	})

	t.Run("observer sees every sweep", func(t *testing.T) {
		var sweeps int
		_, err := EvaluatePolicy(up, m, 1.0, 1e-4, 30,
			WithObserver(func(int, float64) { sweeps++ }))
		require.NoError(t, err)
		require.Equal(t, 30, sweeps)
	})

	t.Run("terminal decisions are ignored", func(t *testing.T) {
		p := NewConstantPolicy(m, gridworld.Left)
		p[0] = Act(gridworld.Right)

		v, err := EvaluatePolicy(p, m, 0.9, 1e-4, 1000)
		require.NoError(t, err)
		require.Equal(t, 0.0, v[0])
		require.InDelta(t, -1.0, v[1], 1e-9)
	})

	t.Run("missing action", func(t *testing.T) {
		p := NewConstantPolicy(m, gridworld.Up)
		p[6] = NoAction()

		_, err := EvaluatePolicy(p, m, 0.9, 1e-4, 1000)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := EvaluatePolicy(up[:10], m, 0.9, 1e-4, 1000)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("invalid cap", func(t *testing.T) {
		_, err := EvaluatePolicy(up, m, 0.9, 1e-4, 0)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestPolicyIteration(t *testing.T) {
	m := newModel(t, 4, 0, 15)

	for _, gamma := range []float64{1.0, 0.9, 0.8} {
		t.Run(fmt.Sprintf("gamma %v agrees with value iteration", gamma),
			func(t *testing.T) {
				viV, viP, _, err := ValueIteration(m, gamma, 1e-4)
				require.NoError(t, err)

				piV, piP, iters, err := PolicyIteration(m, gamma, 1e-4,
					DefaultEvalMaxIterations)
				require.NoError(t, err)
				require.LessOrEqual(t, iters, 10)

				require.InDeltaSlice(t, viV, piV, 1e-4)
				require.True(t, viP.Equal(piP), "vi: %v\npi: %v", viP, piP)

				for _, s := range m.TerminalStates() {
					require.Equal(t, 0.0, piV[s])
					require.Equal(t, NoAction(), piP[s])
				}
			})
	}

	t.Run("invalid evaluation cap", func(t *testing.T) {
		_, _, _, err := PolicyIteration(m, 0.9, 1e-4, 0)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("outer cap", func(t *testing.T) {
		_, _, iters, err := PolicyIteration(m, 0.9, 1e-4,
			DefaultEvalMaxIterations, WithMaxIterations(1))
		require.ErrorIs(t, err, ErrNotConverged)
		require.Equal(t, 1, iters)
	})
}

func TestConfig(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		c := DefaultConfig(1.0)
		require.NoError(t, c.Validate())

		r, err := c.ValueIteration()
		require.NoError(t, err)
		require.Equal(t, -2.0, r.Values[5])

		r, err = c.PolicyIteration()
		require.NoError(t, err)
		require.Equal(t, Act(gridworld.Up), r.Policy[5])

		v, err := c.EvaluatePolicy(r.Policy)
		require.NoError(t, err)
		require.InDeltaSlice(t, r.Values, v, 1e-9)
	})

	t.Run("invalid", func(t *testing.T) {
		configs := map[string]Config{
			"size":        {Size: 0, Gamma: 0.9, Theta: 1e-4},
			"terminal":    {Size: 2, Terminals: []int{4}, Gamma: 0.9, Theta: 1e-4},
			"gamma":       {Size: 2, Terminals: []int{0}, Gamma: 0, Theta: 1e-4},
			"theta":       {Size: 2, Terminals: []int{0}, Gamma: 0.9},
			"unreachable": {Size: 2, Gamma: 1, Theta: 1e-4},
			"eval cap":    {Size: 2, Gamma: 0.9, Theta: 1e-4, EvalMaxIterations: -1},
			"cap":         {Size: 2, Gamma: 0.9, Theta: 1e-4, MaxIterations: -1},
		}

		for name, c := range configs {
			require.ErrorIs(t, c.Validate(), ErrInvalidConfig, name)

			_, err := c.ValueIteration()
			require.ErrorIs(t, err, ErrInvalidConfig, name)
		}
	})

	t.Run("max iterations", func(t *testing.T) {
		c := DefaultConfig(1.0)
		c.MaxIterations = 2

		_, err := c.ValueIteration()
		require.ErrorIs(t, err, ErrNotConverged)

		// Options given to the call take precedence
		r, err := c.ValueIteration(WithMaxIterations(0))
		require.NoError(t, err)
		require.Equal(t, 4, r.Iterations)
	})
}

func TestSolverJSON(t *testing.T) {
	s, err := New(PolicyIterationType, DefaultConfig(0.9))
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded Solver
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, *s, decoded)

	r, err := decoded.Solve()
	require.NoError(t, err)
	require.Equal(t, 0.0, r.Values[0])

	err = json.Unmarshal([]byte(`{"Type": "Sarsa", "Size": 4}`), &decoded)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New("Sarsa", DefaultConfig(0.9))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDecisionJSON(t *testing.T) {
	p := Policy{NoAction(), Act(gridworld.Right), Act(gridworld.Down)}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.JSONEq(t, `[null, "Right", "Down"]`, string(data))

	var decoded Policy
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.True(t, p.Equal(decoded))

	require.Error(t, json.Unmarshal([]byte(`["Sideways"]`), &decoded))
}

func BenchmarkValueIteration(b *testing.B) {
	m := newModel(b, 16, 0, 255)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, _, _, err := ValueIteration(m, 0.9, 1e-4); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPolicyIteration(b *testing.B) {
	m := newModel(b, 16, 0, 255)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _, _, err := PolicyIteration(m, 0.9, 1e-4, DefaultEvalMaxIterations)
		if err != nil {
			b.Fatal(err)
		}
	}
}
