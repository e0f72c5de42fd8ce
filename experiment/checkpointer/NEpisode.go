package checkpointer

import (
	"fmt"

	ts "github.com/samuelfneumann/tabular/timestep"
)

// nEpisode implements checkpointing every N finished episodes
type nEpisode struct {
	interval int
	episodes int
	object   Serializable // Object to save

	// filename returns the filename of the file to save the object in.
	//
	// If each serialized object should be saved in a separate file with
	// each file having an incremented number as a suffix (e.g.
	// agent0000.bin, agent0001.bin, ...), then simply use the static
	// function FilenameEnumerator, which will return a function that
	// will enumerate filenames.
	filename func() string
}

// NewNEpisode returns a checkpointer that checkpoints object every n
// finished episodes
func NewNEpisode(n int, object Serializable,
	filename func() string) (Checkpointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("newNEpisode: interval %d must be positive", n)
	}

	return &nEpisode{
		interval: n,
		object:   object,
		filename: filename,
	}, nil
}

// Checkpoint saves the Checkpointer's tracked object if t ends the
// N-th episode since the last checkpoint
func (n *nEpisode) Checkpoint(t ts.TimeStep) error {
	if !t.Last() {
		return nil
	}

	n.episodes++
	if n.episodes%n.interval == 0 {
		return Save(n.filename(), n.object)
	}
	return nil
}
