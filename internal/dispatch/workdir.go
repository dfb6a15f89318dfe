package dispatch

import (
	"os"
	"sync"
)

// Workdir is an explicitly owned artifact directory, created on first use.
// It replaces the process-wide lazily-cached directory of earlier designs;
// whoever constructs it owns its lifetime.
type Workdir struct {
	root string
	once sync.Once
	err  error
}

// NewWorkdir declares a working directory rooted at root without touching the
// filesystem yet.
func NewWorkdir(root string) *Workdir {
	return &Workdir{root: root}
}

// Path returns the directory path, creating the directory on first use.
func (w *Workdir) Path() (string, error) {
	w.once.Do(func() {
		w.err = os.MkdirAll(w.root, 0o755)
	})
	return w.root, w.err
}
