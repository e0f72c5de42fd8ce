package taxi

import (
	"testing"

	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/timestep"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	for i := 0; i < NumStates; i++ {
		require.Equal(t, i, Encode(Decode(i)))
	}

	s := State{Row: 3, Col: 1, Passenger: 2, Destination: 0}
	require.Equal(t, ((3*5+1)*5+2)*4+0, Encode(s))
}

func TestStartStates(t *testing.T) {
	states := StartStates()
	require.Len(t, states, Rows*Cols*4*3)

	for _, i := range states {
		s := Decode(i)
		require.Less(t, s.Passenger, InTaxi)
		require.NotEqual(t, s.Passenger, s.Destination)
	}
}

func TestTransitionMoves(t *testing.T) {
	tests := []struct {
		name     string
		row, col int
		action   int
		wantRow  int
		wantCol  int
	}{
		{"south", 0, 0, South, 1, 0},
		{"south at bottom", 4, 2, South, 4, 2},
		{"north at top", 0, 2, North, 0, 2},
		{"north", 3, 2, North, 2, 2},
		{"east open", 0, 0, East, 0, 1},
		{"east wall", 0, 1, East, 0, 1},
		{"east at edge", 2, 4, East, 2, 4},
		{"west wall", 4, 1, West, 4, 1},
		{"west open", 2, 3, West, 2, 2},
		{"west at edge", 2, 0, West, 2, 0},
		{"east wall row three", 3, 2, East, 3, 2},
		{"west open row three", 3, 2, West, 3, 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			state := Encode(State{test.row, test.col, 0, 1})
			next, reward, done := Transition(state, test.action)

			s := Decode(next)
			require.Equal(t, test.wantRow, s.Row)
			require.Equal(t, test.wantCol, s.Col)
			require.Equal(t, 0, s.Passenger)
			require.Equal(t, 1, s.Destination)
			require.Equal(t, -1.0, reward)
			require.False(t, done)
		})
	}
}

func TestTransitionPickupDropoff(t *testing.T) {
	t.Run("legal pickup", func(t *testing.T) {
		state := Encode(State{0, 4, 1, 2})
		next, reward, done := Transition(state, Pickup)
		require.Equal(t, InTaxi, Decode(next).Passenger)
		require.Equal(t, -1.0, reward)
		require.False(t, done)
	})

	t.Run("illegal pickup", func(t *testing.T) {
		state := Encode(State{0, 0, 1, 2})
		next, reward, done := Transition(state, Pickup)
		require.Equal(t, state, next)
		require.Equal(t, -10.0, reward)
		require.False(t, done)
	})

	t.Run("delivery", func(t *testing.T) {
		state := Encode(State{4, 0, InTaxi, 2})
		next, reward, done := Transition(state, Dropoff)
		require.Equal(t, 2, Decode(next).Passenger)
		require.Equal(t, 20.0, reward)
		require.True(t, done)
	})

	t.Run("drop at other depot", func(t *testing.T) {
		state := Encode(State{4, 3, InTaxi, 2})
		next, reward, done := Transition(state, Dropoff)
		require.Equal(t, 3, Decode(next).Passenger)
		require.Equal(t, -1.0, reward)
		require.False(t, done)
	})

	t.Run("illegal drop", func(t *testing.T) {
		state := Encode(State{2, 2, InTaxi, 2})
		next, reward, done := Transition(state, Dropoff)
		require.Equal(t, state, next)
		require.Equal(t, -10.0, reward)
		require.False(t, done)
	})
}

func TestTaxiEpisode(t *testing.T) {
	env, step, err := New(0, 0.8, 3)
	require.NoError(t, err)
	require.True(t, step.First())
	require.Equal(t, NumStates, env.ObservationSpec().Len())
	require.Equal(t, NumActions, env.ActionSpec().Len())

	_, _, err = env.Step(NumActions)
	require.ErrorIs(t, err, environment.ErrInvalidAction)

	var last bool
	for i := 0; i < DefaultCutoff; i++ {
		step, last, err = env.Step(Pickup)
		require.NoError(t, err)
		if last {
			break
		}
	}
	require.True(t, last)
	require.Equal(t, DefaultCutoff, step.Number)
	require.Equal(t, timestep.Timeout, step.EndType())

	_, _, err = env.Step(South)
	require.Error(t, err)
}

func TestTaxiDelivers(t *testing.T) {
	env, _, err := New(10, 1.0, 0)
	require.NoError(t, err)

	// Place the taxi one step away from delivering its passenger
	start := Encode(State{Row: 1, Col: 0, Passenger: InTaxi, Destination: 0})
	env.Starter = environment.NewSingleStarter(start)
	_, err = env.Reset()
	require.NoError(t, err)

	step, last, err := env.Step(North)
	require.NoError(t, err)
	require.False(t, last)

	step, last, err = env.Step(Dropoff)
	require.NoError(t, err)
	require.True(t, last)
	require.True(t, step.Terminal())
	require.Equal(t, 20.0, step.Reward)
	require.Contains(t, env.Render(), "T")
}
