package config

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits config files to prevent memory exhaustion (1MB).
const MaxInputSize = 1 << 20

// ErrInputTooLarge indicates the config file exceeds MaxInputSize.
var ErrInputTooLarge = errors.New("config input exceeds maximum size")

// unmarshalStrict decodes YAML into v, rejecting unknown fields so that
// typos such as "macro:" instead of "macros:" are reported.
func unmarshalStrict(data []byte, v any) error {
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if len(data) == 0 {
		return nil
	}
	return yaml.UnmarshalWithOptions(data, v, yaml.Strict())
}

// Marshal encodes cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
