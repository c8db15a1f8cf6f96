package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// parseEnv reads cfg from the environment. Variable names join the nested
// envPrefix tags of [StructuredConfig] with the field tag, e.g.
// OFFLINE_STATIC_CACHE. A variable set to the empty string counts as unset,
// so its default applies.
func parseEnv(cfg *StructuredConfig) error {
	if err := env.ParseWithOptions(cfg, env.Options{Environment: nonEmptyEnviron()}); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}
	return nil
}

func nonEmptyEnviron() map[string]string {
	vars := os.Environ()
	out := make(map[string]string, len(vars))
	for _, kv := range vars {
		if k, v, ok := strings.Cut(kv, "="); ok && v != "" {
			out[k] = v
		}
	}
	return out
}
