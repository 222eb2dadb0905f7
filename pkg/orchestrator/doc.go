// Package orchestrator wires the definition loader, snippet store, trigger
// registry and expander into one application, and owns the reload path
// shared by the file watcher and manual reloads.
package orchestrator
