// Package resolver merges manifest-declared and config-declared module
// dependencies into a graph, validates it (referential integrity, cycles),
// computes the deterministic initialization order, and applies the
// enablement precedence chain: invocation overrides beat user overrides,
// which beat developer defaults.
//
// Resolution is recomputed on every invocation and never cached across
// runs, since overrides may change between them. Structural errors are
// collected into a batch alongside whatever resolutions succeed, so
// callers see partial success rather than all-or-nothing failure.
package resolver
