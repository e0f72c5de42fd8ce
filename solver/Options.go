package solver

// Observer is called after every synchronous sweep with the 1-based
// sweep number and the largest absolute change of the value function
// during that sweep
type Observer func(sweep int, delta float64)

// Option configures an engine
type Option func(*options)

type options struct {
	observer      Observer
	maxIterations int
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) observe(sweep int, delta float64) {
	if o.observer != nil {
		o.observer(sweep, delta)
	}
}

// WithObserver registers an Observer of every sweep. The sweeps of the
// evaluation steps of PolicyIteration are observed as well.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithMaxIterations caps the number of value iteration sweeps, or the
// number of outer iterations of policy iteration. A cap of 0 means no
// cap. Reaching the cap before convergence results in ErrNotConverged.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}
