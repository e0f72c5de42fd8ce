package progressbar

import (
	"fmt"
	"io"
	"sync"

	"github.com/gosuri/uilive"
)

// Lines is a block of terminal lines which can be updated in place
// from multiple goroutines. Each call to Set redraws the whole block.
type Lines struct {
	mu     sync.Mutex
	writer *uilive.Writer
	text   []string
}

// NewLines returns a block of n lines drawn on out
func NewLines(out io.Writer, n int) *Lines {
	writer := uilive.New()
	writer.Out = out

	return &Lines{
		writer: writer,
		text:   make([]string, n),
	}
}

// Set replaces the text of line i and redraws the block
func (l *Lines) Set(i int, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i < 0 || i >= len(l.text) {
		return fmt.Errorf("set: line %d not in [0, %d)", i, len(l.text))
	}
	l.text[i] = text

	for _, line := range l.text {
		fmt.Fprintln(l.writer, line)
	}
	return l.writer.Flush()
}

// Text returns the current text of each line
func (l *Lines) Text() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	text := make([]string, len(l.text))
	copy(text, l.text)
	return text
}
