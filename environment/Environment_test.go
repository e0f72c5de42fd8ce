package environment

import (
	"errors"
	"testing"

	"github.com/samuelfneumann/tabular/timestep"
	"github.com/stretchr/testify/require"
)

func TestCategoricalStarter(t *testing.T) {
	t.Run("samples only from the given states", func(t *testing.T) {
		states := []int{1, 4, 9}
		s, err := NewCategoricalStarter(states, 42)
		require.NoError(t, err)

		seen := make(map[int]int)
		for i := 0; i < 300; i++ {
			seen[s.Start()]++
		}
		require.Len(t, seen, len(states))
		for _, state := range states {
			require.Greater(t, seen[state], 0)
		}
	})

	t.Run("same seed same sequence", func(t *testing.T) {
		a, _ := NewCategoricalStarter([]int{0, 1, 2, 3}, 7)
		b, _ := NewCategoricalStarter([]int{0, 1, 2, 3}, 7)
		for i := 0; i < 20; i++ {
			require.Equal(t, a.Start(), b.Start())
		}
	})

	t.Run("rejects empty state set", func(t *testing.T) {
		_, err := NewCategoricalStarter(nil, 1)
		require.Error(t, err)
	})
}

func TestEnders(t *testing.T) {
	t.Run("step limit times out", func(t *testing.T) {
		limit := NewStepLimit(3)
		step := timestep.New(timestep.Mid, -1, 1, 5, 2)
		require.False(t, limit.End(&step))

		step.Number = 3
		require.True(t, limit.End(&step))
		require.True(t, step.Last())
		require.Equal(t, timestep.Timeout, step.EndType())
	})

	t.Run("zero step limit never ends", func(t *testing.T) {
		step := timestep.New(timestep.Mid, -1, 1, 5, 1_000_000)
		require.False(t, NewStepLimit(0).End(&step))
	})

	t.Run("function ender takes priority in order", func(t *testing.T) {
		terminal := NewFunctionEnder(func(s int) bool { return s == 0 },
			timestep.TerminalStateReached)
		ender := Enders{terminal, NewStepLimit(1)}

		step := timestep.New(timestep.Mid, -1, 1, 0, 1)
		require.True(t, ender.End(&step))
		require.Equal(t, timestep.TerminalStateReached, step.EndType())
	})
}

func TestSpec(t *testing.T) {
	spec := NewDiscreteSpec(Action, 4)
	require.Equal(t, 4, spec.Len())
	require.True(t, spec.Contains(0))
	require.True(t, spec.Contains(3))
	require.False(t, spec.Contains(4))
	require.False(t, spec.Contains(-1))

	require.Panics(t, func() { NewSpec(Reward, 1, 0, Continuous) })
}

func TestActionError(t *testing.T) {
	var err error = &ActionError{Action: 7, Actions: 4}
	require.True(t, errors.Is(err, ErrInvalidAction))
	require.Contains(t, err.Error(), "7")
}
