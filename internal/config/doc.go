// Package config loads and validates the two configuration documents that
// drive module enablement: the developer document (required, authoritative
// for required/default-enabled status) and the user document (optional
// per-user overrides).
//
// Unknown keys in either document are tolerated so older builds keep
// accepting newer documents; required fields are enforced with errors that
// name the missing field and the offending entry.
package config
