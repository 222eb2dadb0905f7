// Package autotext expands text snippets that carry declared variables,
// fill-in fields and special runtime values. Most callers start from New,
// which wires a definition file to a trigger engine; ExpandText and
// ExpandDefaults cover one-off expansions of a form string.
package autotext

import (
	"github.com/goliatone/go-autotext/pkg/form"
	"github.com/goliatone/go-autotext/pkg/orchestrator"
	"github.com/goliatone/go-autotext/pkg/snippet"
	"github.com/goliatone/go-autotext/pkg/variables"
)

// App aliases the orchestrator so callers can hold the running application
// without importing pkg/orchestrator.
type App = orchestrator.Orchestrator

// Option configures an App.
type Option = orchestrator.Option

// Values maps field names to collected answers.
type Values = form.Values

// Snippet is one definition entry.
type Snippet = snippet.Snippet

// New constructs an App.
func New(options ...Option) *App {
	return orchestrator.New(options...)
}

// WithDefinitions forwards orchestrator.WithDefinitions.
func WithDefinitions(path string) Option {
	return orchestrator.WithDefinitions(path)
}

// NewLoader constructs a definition loader for path.
func NewLoader(path string) *snippet.Loader {
	return snippet.NewLoader(path)
}

// Parse parses a form string with the special values resolved from the
// current environment.
func Parse(text string) *form.Template {
	return form.Parse(text, form.WithResolver(variables.New()))
}

// ExpandText renders text with values; fields without a value take their
// default.
func ExpandText(text string, values Values) string {
	return form.Render(Parse(text), values)
}

// ExpandDefaults renders text accepting every default.
func ExpandDefaults(text string) string {
	return ExpandText(text, nil)
}
