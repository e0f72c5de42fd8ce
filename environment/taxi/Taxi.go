// Package taxi implements the Taxi environment of Dietterich (2000)
//
// A taxi drives around a 5 x 5 grid with four depots: R, G, Y and B. At
// the start of each episode a passenger waits at one depot and wants to
// be driven to a different one. The episode ends once the passenger is
// dropped off at their destination.
//
// Observations encode (row, col, passenger location, destination) as
//
//	((row*5 + col)*5 + passenger)*4 + destination
//
// where a passenger location of 4 means the passenger is in the taxi.
package taxi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/timestep"
)

const (
	Rows = 5
	Cols = 5

	// InTaxi is the passenger location when the passenger is riding
	InTaxi = 4

	NumStates  = Rows * Cols * 5 * 4
	NumActions = 6

	// DefaultCutoff is the default episode step limit
	DefaultCutoff = 200
)

// Actions
const (
	South = iota
	North
	East
	West
	Pickup
	Dropoff
)

const (
	stepReward    = -1.0
	dropReward    = 20.0
	illegalReward = -10.0
)

// The map of the environment. A ':' between two cells can be crossed,
// a '|' cannot.
var desc = []string{
	"+---------+",
	"|R: | : :G|",
	"| : | : : |",
	"| : : : : |",
	"| | : | : |",
	"|Y| : |B: |",
	"+---------+",
}

// Depot is a pickup and drop-off location
type Depot struct {
	Name     byte
	Row, Col int
}

// Depots are the four pickup and drop-off locations, indexed by
// passenger location and destination
var Depots = [4]Depot{
	{'R', 0, 0},
	{'G', 0, 4},
	{'Y', 4, 0},
	{'B', 4, 3},
}

// State is a decoded Taxi observation
type State struct {
	Row, Col    int
	Passenger   int
	Destination int
}

// Encode returns the observation index of s
func Encode(s State) int {
	i := s.Row
	i *= Cols
	i += s.Col
	i *= 5
	i += s.Passenger
	i *= 4
	i += s.Destination
	return i
}

// Decode returns the State encoded by observation index i
func Decode(i int) State {
	var s State
	s.Destination = i % 4
	i /= 4
	s.Passenger = i % 5
	i /= 5
	s.Col = i % Cols
	i /= Cols
	s.Row = i
	return s
}

// depotAt returns the index of the depot at (row, col), or -1 if there
// is no depot there
func depotAt(row, col int) int {
	for i, d := range Depots {
		if d.Row == row && d.Col == col {
			return i
		}
	}
	return -1
}

// Transition returns the next state and reward of taking action in
// state, along with whether the passenger was delivered
func Transition(state, action int) (next int, reward float64, done bool) {
	s := Decode(state)
	n := s
	reward = stepReward

	switch action {
	case South:
		n.Row = min(s.Row+1, Rows-1)

	case North:
		n.Row = max(s.Row-1, 0)

	case East:
		if desc[1+s.Row][2*s.Col+2] == ':' {
			n.Col = min(s.Col+1, Cols-1)
		}

	case West:
		if desc[1+s.Row][2*s.Col] == ':' {
			n.Col = max(s.Col-1, 0)
		}

	case Pickup:
		if s.Passenger < InTaxi && depotAt(s.Row, s.Col) == s.Passenger {
			n.Passenger = InTaxi
		} else {
			reward = illegalReward
		}

	case Dropoff:
		depot := depotAt(s.Row, s.Col)
		switch {
		case s.Passenger == InTaxi && depot == s.Destination:
			n.Passenger = s.Destination
			reward = dropReward
			done = true

		case s.Passenger == InTaxi && depot >= 0:
			n.Passenger = depot

		default:
			reward = illegalReward
		}
	}

	return Encode(n), reward, done
}

// StartStates returns the states in which an episode may start: the
// passenger waits at a depot which is not their destination
func StartStates() []int {
	var states []int
	for i := 0; i < NumStates; i++ {
		s := Decode(i)
		if s.Passenger < InTaxi && s.Passenger != s.Destination {
			states = append(states, i)
		}
	}
	return states
}

// Taxi implements the Taxi environment
type Taxi struct {
	environment.Starter
	limit    environment.StepLimit
	discount float64

	currentStep timestep.TimeStep
}

// New returns a new Taxi environment with episodes cut off after
// cutoff steps. If cutoff is 0, DefaultCutoff is used. Starting states
// are sampled uniformly from StartStates.
func New(cutoff int, discount float64, seed uint64) (*Taxi,
	timestep.TimeStep, error) {
	if cutoff < 0 {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: cutoff %d < 0",
			cutoff)
	} else if cutoff == 0 {
		cutoff = DefaultCutoff
	}
	if discount < 0 || discount > 1 {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: discount %v "+
			"not in [0, 1]", discount)
	}

	starter, err := environment.NewCategoricalStarter(StartStates(), seed)
	if err != nil {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: %w", err)
	}

	t := &Taxi{
		Starter:  starter,
		limit:    environment.NewStepLimit(cutoff),
		discount: discount,
	}
	step, err := t.Reset()
	return t, step, err
}

// Reset resets the environment and returns the first TimeStep of a new
// episode
func (t *Taxi) Reset() (timestep.TimeStep, error) {
	step := timestep.New(timestep.First, 0, t.discount, t.Start(), 0)
	t.currentStep = step
	return step, nil
}

// Step takes one environmental step given some action and returns the
// next TimeStep along with whether or not the episode has ended
func (t *Taxi) Step(action int) (timestep.TimeStep, bool, error) {
	if err := environment.ValidateAction(t, action); err != nil {
		return timestep.TimeStep{}, false, err
	}
	if t.currentStep.Last() {
		return t.currentStep, true, errors.New("step: episode has ended, " +
			"call Reset to start a new episode")
	}

	next, reward, done := Transition(t.currentStep.Observation, action)
	step := timestep.New(timestep.Mid, reward, t.discount, next,
		t.currentStep.Number+1)

	var last bool
	if done {
		step.StepType = timestep.Last
		step.SetEnd(timestep.TerminalStateReached)
		last = true
	} else {
		last = t.limit.End(&step)
	}

	t.currentStep = step
	return step, last, nil
}

// CurrentTimeStep returns the current TimeStep of the environment
func (t *Taxi) CurrentTimeStep() timestep.TimeStep {
	return t.currentStep
}

// RewardSpec returns the reward specification of the environment
func (t *Taxi) RewardSpec() environment.Spec {
	return environment.NewSpec(environment.Reward, illegalReward, dropReward,
		environment.Continuous)
}

// DiscountSpec returns the discount specification of the environment
func (t *Taxi) DiscountSpec() environment.Spec {
	return environment.NewSpec(environment.Discount, t.discount, t.discount,
		environment.Continuous)
}

// ObservationSpec returns the observation specification of the
// environment
func (t *Taxi) ObservationSpec() environment.Spec {
	return environment.NewDiscreteSpec(environment.Observation, NumStates)
}

// ActionSpec returns the action specification of the environment
func (t *Taxi) ActionSpec() environment.Spec {
	return environment.NewDiscreteSpec(environment.Action, NumActions)
}

// Render draws the map with the taxi drawn as 'T' when empty and 'P'
// when carrying the passenger. The waiting passenger's depot is written
// in lower case.
func (t *Taxi) Render() string {
	s := Decode(t.currentStep.Observation)

	rows := make([][]byte, len(desc))
	for i := range desc {
		rows[i] = []byte(desc[i])
	}

	if s.Passenger < InTaxi {
		d := Depots[s.Passenger]
		rows[1+d.Row][2*d.Col+1] = d.Name + ('a' - 'A')
	}
	if s.Passenger == InTaxi {
		rows[1+s.Row][2*s.Col+1] = 'P'
	} else {
		rows[1+s.Row][2*s.Col+1] = 'T'
	}

	var b strings.Builder
	for _, r := range rows {
		b.Write(r)
		b.WriteByte('\n')
	}
	return b.String()
}

func (t *Taxi) String() string {
	s := Decode(t.currentStep.Observation)
	str := "Taxi | At: (%d, %d)  |  Passenger: %d  |  Destination: %c"
	return fmt.Sprintf(str, s.Row, s.Col, s.Passenger,
		Depots[s.Destination].Name)
}
