package gridworld

import "fmt"

// Action is a move in the grid
type Action int

// Available actions, in enumeration order. Greedy action selection
// breaks ties in favour of the action that comes first in this order.
const (
	Up Action = iota
	Right
	Down
	Left
)

// NumActions is the number of actions available in every state
const NumActions = 4

// Actions lists all actions in enumeration order
var Actions = [NumActions]Action{Up, Right, Down, Left}

// Valid returns whether a is one of the four grid actions
func (a Action) Valid() bool {
	return a >= Up && a <= Left
}

// Displacement returns the (row, col) unit displacement of an action
func (a Action) Displacement() (dRow, dCol int) {
	switch a {
	case Up:
		return -1, 0
	case Right:
		return 0, 1
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	}
	return 0, 0
}

// Glyph returns an arrow representing the action
func (a Action) Glyph() string {
	switch a {
	case Up:
		return "^"
	case Right:
		return ">"
	case Down:
		return "v"
	case Left:
		return "<"
	}
	return "?"
}

func (a Action) String() string {
	switch a {
	case Up:
		return "Up"
	case Right:
		return "Right"
	case Down:
		return "Down"
	case Left:
		return "Left"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction parses the name or glyph of an action
func ParseAction(s string) (Action, error) {
	switch s {
	case "up", "Up", "U", "^":
		return Up, nil
	case "right", "Right", "R", ">":
		return Right, nil
	case "down", "Down", "D", "v":
		return Down, nil
	case "left", "Left", "L", "<":
		return Left, nil
	}
	return 0, fmt.Errorf("parseAction: unknown action %q", s)
}
