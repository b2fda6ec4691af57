package module

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeOptions decodes a module's settings bag into its typed options
// struct. Unknown keys are ignored so that newer documents keep working
// against older module builds.
func DecodeOptions(options map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("building options decoder: %w", err)
	}
	if err := decoder.Decode(options); err != nil {
		return fmt.Errorf("decoding options: %w", err)
	}
	return nil
}
