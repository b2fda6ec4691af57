// Package dag implements the directed acyclic graph underpinning module
// resolution: cycle detection with full path reporting and deterministic
// topological ordering.
package dag
