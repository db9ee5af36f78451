package controller

import (
	"strings"

	"github.com/madpaura/docker-webui/pkg/validate"
)

// ParseBuildArgs turns line-oriented "KEY=VALUE" text into a build
// argument map. Blank lines and lines starting with # are skipped,
// values may contain '=', and a duplicated key keeps its last value.
func ParseBuildArgs(text string) (map[string]string, error) {
	args := make(map[string]string)
	if strings.TrimSpace(text) == "" {
		return args, nil
	}

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, validate.Errorf("invalid build argument format: %s, expected KEY=VALUE", line)
		}

		key = strings.TrimSpace(key)
		if err := validate.BuildArgKey(key); err != nil {
			return nil, err
		}
		args[key] = strings.TrimSpace(value)
	}
	return args, nil
}
