package prompts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileTemplate is one entry in an operator-supplied templates file.
type FileTemplate struct {
	Name            string            `yaml:"name"`
	Body            string            `yaml:"body"`
	RequiredContext []string          `yaml:"required_context"`
	DefaultValues   map[string]string `yaml:"default_values"`
}

// LoadFile registers extra templates from a YAML file on top of the
// built-in catalog. An empty path or a missing file is not an error, so
// the file stays optional in deployments that only use the builtins.
func LoadFile(registry *Registry, path string) error {
	if path == "" {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read templates file: %w", err)
	}

	var entries []FileTemplate
	if err := yaml.Unmarshal(content, &entries); err != nil {
		return fmt.Errorf("parse templates file %s: %w", path, err)
	}

	for _, e := range entries {
		if err := registry.Register(TemplateName(e.Name), e.Body, e.RequiredContext, e.DefaultValues); err != nil {
			return fmt.Errorf("templates file %s: %w", path, err)
		}
	}
	return nil
}
