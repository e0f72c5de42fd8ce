package solver

import (
	"encoding/json"
	"fmt"

	"github.com/samuelfneumann/tabular/environment/gridworld"
)

// Values is a state value function, indexed by state
type Values []float64

// Policy is a deterministic policy, holding one Decision per state
type Policy []Decision

// Decision is a single entry of a Policy: either an action to take or
// no action at all, as in terminal states
type Decision struct {
	action gridworld.Action
	ok     bool
}

// Act returns the Decision to take action a
func Act(a gridworld.Action) Decision {
	return Decision{action: a, ok: true}
}

// NoAction returns the Decision of a state in which no action is taken
func NoAction() Decision {
	return Decision{}
}

// Action returns the action of the Decision and whether there is one
func (d Decision) Action() (gridworld.Action, bool) {
	return d.action, d.ok
}

// IsAction returns whether the Decision takes an action
func (d Decision) IsAction() bool {
	return d.ok
}

// Glyph returns the arrow of the Decision's action, or "T" if no
// action is taken
func (d Decision) Glyph() string {
	if !d.ok {
		return "T"
	}
	return d.action.Glyph()
}

func (d Decision) String() string {
	if !d.ok {
		return "NoAction"
	}
	return d.action.String()
}

// MarshalJSON implements the json.Marshaler interface. A Decision is
// encoded as its action name, or null if it takes no action.
func (d Decision) MarshalJSON() ([]byte, error) {
	if !d.ok {
		return []byte("null"), nil
	}
	return json.Marshal(d.action.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (d *Decision) UnmarshalJSON(data []byte) error {
	var name *string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}

	if name == nil {
		*d = NoAction()
		return nil
	}

	a, err := gridworld.ParseAction(*name)
	if err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}
	*d = Act(a)
	return nil
}

// NewConstantPolicy returns the Policy which takes action a in every
// non-terminal state of model
func NewConstantPolicy(model gridworld.Model, a gridworld.Action) Policy {
	policy := make(Policy, model.States())
	for s := range policy {
		if !model.Terminal(s) {
			policy[s] = Act(a)
		}
	}
	return policy
}

// Equal returns whether two policies make the same Decision in every
// state
func (p Policy) Equal(other Policy) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}
