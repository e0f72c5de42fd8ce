package tracker

import (
	"fmt"

	"github.com/samuelfneumann/tabular/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes in an
// experiment.
// Note that an episode must finish for this Tracker to save its data.
// If the last episode in an experiment does not finish, that episode's
// length will not be saved.
type EpisodeLength struct {
	lastTimeStep   int
	episodeLengths []float64
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength tracker which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{lastTimeStep: -1, filename: filename}
}

// Track tracks the episode lengths in an experiment. When this function
// is called, it caches the episode length if the timestep passed to it
// is the last timestep in the episode. Non-sequential timesteps are an
// error.
func (e *EpisodeLength) Track(t timestep.TimeStep) error {
	if e.lastTimeStep+1 != t.Number {
		return fmt.Errorf("track: last two timesteps tracked are not "+
			"sequential: timestep %v --> timestep %v were tracked",
			e.lastTimeStep, t.Number)
	}

	if t.Last() {
		e.episodeLengths = append(e.episodeLengths, float64(t.Number))
		e.lastTimeStep = -1
	} else {
		e.lastTimeStep = t.Number
	}
	return nil
}

// Data returns the length of each finished episode
func (e *EpisodeLength) Data() []float64 {
	data := make([]float64, len(e.episodeLengths))
	copy(data, e.episodeLengths)
	return data
}

// Save saves the data tracked by the EpisodeLength Tracker to disk.
func (e *EpisodeLength) Save() error {
	return save(e.filename, e.episodeLengths)
}
