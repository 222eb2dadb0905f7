package snippet

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrDefinitionLoad marks every failure to read or decode the definition
// file. Check with errors.Is.
var ErrDefinitionLoad = errors.New("snippet: definition load failed")

// LoadError describes a failed load of the definition file.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("snippet: load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func newLoadError(path string, cause error) error {
	err := errors.Mark(&LoadError{Path: path, Err: cause}, ErrDefinitionLoad)
	return errors.WithHintf(err, "fix %s and save it again, or reload manually", path)
}
