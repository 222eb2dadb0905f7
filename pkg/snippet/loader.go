package snippet

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Loader reads the definition file from disk or from an fs.FS.
type Loader struct {
	path string
	fsys fs.FS
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS reads the definition from fsys instead of the OS filesystem. The
// path is then interpreted relative to fsys.
func WithFS(fsys fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fsys = fsys
	}
}

// NewLoader constructs a Loader for path.
func NewLoader(path string, options ...LoaderOption) *Loader {
	l := &Loader{path: strings.TrimSpace(path)}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Path returns the definition path.
func (l *Loader) Path() string {
	return l.path
}

// Load reads and decodes the definition file into a new snapshot. All
// failures are returned as *LoadError marked with ErrDefinitionLoad.
func (l *Loader) Load() (*Snapshot, error) {
	if l.path == "" {
		return nil, newLoadError(l.path, errors.New("definition path is empty"))
	}

	data, err := l.read()
	if err != nil {
		return nil, newLoadError(l.path, err)
	}

	snippets, err := Decode(data)
	if err != nil {
		return nil, newLoadError(l.path, err)
	}
	return NewSnapshot(l.path, snippets), nil
}

func (l *Loader) read() ([]byte, error) {
	if l.fsys != nil {
		return fs.ReadFile(l.fsys, filepath.ToSlash(l.path))
	}
	// Read-only open so an editor can keep the file open for writing.
	f, err := os.OpenFile(l.path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
