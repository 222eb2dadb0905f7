package collector

import "errors"

var (
	// ErrCanceled signals the user dismissed the form (e.g. Ctrl+C). The
	// expansion is dropped without output.
	ErrCanceled = errors.New("collector: canceled")
	// ErrNilTemplate is returned when Collect receives no template.
	ErrNilTemplate = errors.New("collector: template is nil")
)
