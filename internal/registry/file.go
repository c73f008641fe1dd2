package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/logger"
)

// fileFormat is the YAML shape of a registry override file.
type fileFormat struct {
	Models []Entry `yaml:"models"`
}

// LoadFile reads a registry override from a YAML file. An empty path or a
// missing file yields the built-in defaults; a malformed file is an error
// so a typo cannot silently reclassify usage.
func LoadFile(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("registry file not found, using defaults", "path", path)
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse registry file: %w", err)
	}

	if len(f.Models) == 0 {
		logger.Warn("registry file declares no models, using defaults", "path", path)
		return Default(), nil
	}

	for i, e := range f.Models {
		if e.Prefix == "" || e.Identity == "" {
			return nil, fmt.Errorf("registry entry %d: prefix and identity are required", i)
		}
	}

	return New(f.Models), nil
}
