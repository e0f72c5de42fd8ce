package checkpointer

import (
	"fmt"
	"path/filepath"
)

// fileEnumerator enumerates filenames
type fileEnumerator struct {
	i      int
	prefix string
	ext    string
}

// filename returns the name of the next consecutive enumerated file
func (f *fileEnumerator) filename() string {
	name := fmt.Sprintf("%v%04d%v", f.prefix, f.i, f.ext)
	f.i++
	return name
}

// FilenameEnumerator returns a function which will return filenames in
// dir with a counter integer suffix. The first call returns the
// filename with suffix start, and each following call returns a
// filename whose suffix is one higher than on the previous call. The
// extension parameter determines the file extension, e.g. ".bin".
func FilenameEnumerator(start int, dir, prefix, extension string) func() string {
	enum := fileEnumerator{
		i:      start,
		prefix: filepath.Join(dir, prefix),
		ext:    extension,
	}

	return enum.filename
}
