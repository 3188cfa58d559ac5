package variable

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/KaramelBytes/healthloom-cli/internal/utils"
	"gopkg.in/yaml.v3"
)

type registryFile struct {
	Variables []Variable `yaml:"variables"`
}

// Load reads a registry file. A missing file yields an empty registry.
func Load(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Registry{}, nil
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}
	var f registryFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	r, err := NewRegistry(f.Variables...)
	if err != nil {
		return nil, fmt.Errorf("load registry %s: %w", path, err)
	}
	return r, nil
}

// Save writes the registry to path using an atomic write.
func (r *Registry) Save(path string) error {
	b, err := yaml.Marshal(registryFile{Variables: r.vars})
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}
	return utils.SafeWriteFile(path, b)
}
