// Package cli translates command-line arguments into an app.Config,
// including the per-invocation module enable/disable overrides. It owns
// the usage text and the mapping of argument problems to exit codes.
package cli
