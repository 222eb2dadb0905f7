package autotext

import (
	_ "embed"
)

//go:embed examples/snippets.yaml
var starterDefinitions []byte

// StarterDefinitions returns a commented example definition file. `autotext
// init` writes it when no definition file exists yet.
func StarterDefinitions() []byte {
	return append([]byte(nil), starterDefinitions...)
}
