package environment

import (
	"fmt"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an acion, an observation, a discount, or a reward
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
	Reward
)

// Cardinality determines the cardinality of a number (discrete or continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an environment specification, which tells the type
// and bounds of an action, observation, discount, or reward in an
// environment. Bounds are inclusive.
type Spec struct {
	Type       SpecType
	LowerBound float64
	UpperBound float64
	Cardinality
}

// NewSpec constructs a new environment specification
// The argument t outlines what the specification is describing (e.g.
// actions, observations, etc.). The cardinality arguments describes
// whether the values that the spec describes are continuous or
// discrete.
func NewSpec(t SpecType, lowerBound, upperBound float64,
	cardinality Cardinality) Spec {
	if lowerBound > upperBound {
		panic(fmt.Sprintf("lower bound %v must not exceed upper bound %v",
			lowerBound, upperBound))
	}
	return Spec{t, lowerBound, upperBound, cardinality}
}

// NewDiscreteSpec returns a Spec describing the integers [0, n)
func NewDiscreteSpec(t SpecType, n int) Spec {
	return NewSpec(t, 0, float64(n-1), Discrete)
}

// Len returns the number of values a discrete Spec describes. Len
// panics on continuous specs.
func (s Spec) Len() int {
	if s.Cardinality != Discrete {
		panic("len: continuous spec has no length")
	}
	return int(s.UpperBound-s.LowerBound) + 1
}

// Contains returns whether the integer value i is described by the
// Spec
func (s Spec) Contains(i int) bool {
	v := float64(i)
	return v >= s.LowerBound && v <= s.UpperBound
}
