package config

import "fmt"

// ConfigurationError reports a malformed or missing configuration document
// or field. It is fatal: resolution never proceeds past one.
type ConfigurationError struct {
	// Path is the document the problem was found in; empty when the error
	// concerns cross-source validation rather than a single file.
	Path   string
	Detail string
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("configuration error: %s", e.Detail)
	}
	return fmt.Sprintf("configuration error in %s: %s", e.Path, e.Detail)
}
