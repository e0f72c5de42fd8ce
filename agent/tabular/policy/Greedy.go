package policy

import "gonum.org/v1/gonum/mat"

// NewGreedy creates a new greedy policy over qTable
func NewGreedy(seed uint64, qTable *mat.Dense) *EGreedy {
	p, err := NewEGreedy(0.0, seed, qTable)
	if err != nil {
		panic(err)
	}
	return p
}
