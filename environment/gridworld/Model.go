package gridworld

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidGrid is returned when a grid cannot be constructed from
// the given size and terminal states
var ErrInvalidGrid = errors.New("invalid grid")

// NextState returns the state reached by taking action a in state s of
// an n x n grid with the given terminal states.
//
// Terminal states are absorbing and always map to themselves. A move
// which would leave the grid is rejected and leaves the agent where it
// is.
func NextState(s int, a Action, n int, terminalStates []int) int {
	for _, t := range terminalStates {
		if s == t {
			return s
		}
	}
	return move(s, a, n)
}

// move applies the displacement of a to s, ignoring terminal states
func move(s int, a Action, n int) int {
	row, col := Coordinates(s, n)
	dRow, dCol := a.Displacement()

	newRow, newCol := row+dRow, col+dCol
	if newRow < 0 || newRow >= n || newCol < 0 || newCol >= n {
		return s
	}
	return Index(newRow, newCol, n)
}

// Coordinates decodes a state into its (row, col) position in an
// n x n grid
func Coordinates(s, n int) (row, col int) {
	return s / n, s % n
}

// Index encodes position (row, col) of an n x n grid as a state
func Index(row, col, n int) int {
	return row*n + col
}

// Model is the deterministic transition model of an n x n grid with
// absorbing terminal states. A Model is immutable once constructed and
// may be shared between goroutines.
type Model struct {
	n        int
	terminal []bool
}

// NewModel returns the Model of an n x n grid with the given terminal
// states. Duplicate terminal states are ignored.
func NewModel(n int, terminalStates []int) (Model, error) {
	if n <= 0 {
		return Model{}, fmt.Errorf("%w: size %d must be positive",
			ErrInvalidGrid, n)
	}

	terminal := make([]bool, n*n)
	for _, t := range terminalStates {
		if t < 0 || t >= n*n {
			return Model{}, fmt.Errorf("%w: terminal state %d not in [0, %d)",
				ErrInvalidGrid, t, n*n)
		}
		terminal[t] = true
	}

	return Model{n: n, terminal: terminal}, nil
}

// Size returns the number of rows (and columns) of the grid
func (m Model) Size() int {
	return m.n
}

// States returns the number of states in the grid
func (m Model) States() int {
	return m.n * m.n
}

// Terminal returns whether s is a terminal state
func (m Model) Terminal(s int) bool {
	return m.terminal[s]
}

// TerminalStates returns the sorted terminal states of the grid
func (m Model) TerminalStates() []int {
	var states []int
	for s, t := range m.terminal {
		if t {
			states = append(states, s)
		}
	}
	sort.Ints(states)
	return states
}

// NonTerminalStates returns the sorted non-terminal states of the grid
func (m Model) NonTerminalStates() []int {
	states := make([]int, 0, len(m.terminal))
	for s, t := range m.terminal {
		if !t {
			states = append(states, s)
		}
	}
	return states
}

// Next returns the state reached by taking action a in state s. It
// is equivalent to NextState(s, a, m.Size(), m.TerminalStates()).
func (m Model) Next(s int, a Action) int {
	if m.terminal[s] {
		return s
	}
	return move(s, a, m.n)
}
