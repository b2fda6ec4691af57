// Package registry provides the central "glue" for the module system.
//
// The Registry stores mappings between the handler identifiers used in
// module manifests (e.g. "EntityReference") and the compiled Go factories
// that implement them. Discovery scans the manifests directory, parses
// each manifest, and binds every declared module to its factory, producing
// the immutable descriptor set the resolver works from.
//
// A manifest whose handler is not registered still yields a descriptor,
// with the bind failure recorded on it: "known but broken" stays
// distinguishable from "unknown".
package registry
