package loader

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "AUTOPLAY_"

// LoadEnv overlays environment variables onto v using its env struct tags,
// each prefixed with prefix. Unset variables leave fields untouched.
func LoadEnv(prefix string, v any) error {
	if err := env.ParseWithOptions(v, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// EnvNames lists the environment variables v reads, prefix included.
func EnvNames(prefix string, v any) ([]string, error) {
	params, err := env.GetFieldParamsWithOptions(v, env.Options{Prefix: prefix})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Key)
	}
	return names, nil
}
