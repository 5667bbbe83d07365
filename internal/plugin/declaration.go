package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalidFormat is returned for declaration files that are not a list of
// strings or step objects.
var ErrInvalidFormat = errors.New("invalid plugin file format")

// FileNames are looked up in order; the first one found is used.
var FileNames = []string{"plugins.json", "plugins.yaml", "plugins.yml"}

// Declaration is the content of a plugins file.
type Declaration struct {
	Disabled bool   `yaml:"disabled"`
	Plugins  []Step `yaml:"plugins"`
}

// Step is one plugin. In a file it is either a bare string, the inline shell
// text to run, or an object with a run field.
type Step struct {
	Run         string `yaml:"run"`
	Description string `yaml:"description"`
	Disabled    bool   `yaml:"disabled"`
}

// UnmarshalYAML accepts both step forms.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag != "!!str" {
			return fmt.Errorf("line %d: %w", node.Line, ErrInvalidFormat)
		}
		*s = Step{Run: node.Value}
		return nil
	case yaml.MappingNode:
		type plain Step
		var p plain
		if err := node.Decode(&p); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, ErrInvalidFormat)
		}
		*s = Step(p)
		return nil
	default:
		return fmt.Errorf("line %d: %w", node.Line, ErrInvalidFormat)
	}
}

// Parse decodes a declaration. JSON files are parsed as YAML, of which JSON
// is a subset.
func Parse(data []byte) (*Declaration, error) {
	var d Declaration
	if err := yaml.Unmarshal(data, &d); err != nil {
		if errors.Is(err, ErrInvalidFormat) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	for i, step := range d.Plugins {
		if step.Run == "" {
			return nil, fmt.Errorf("plugin %d: run is required: %w", i, ErrInvalidFormat)
		}
	}
	return &d, nil
}

// Find returns the first declaration file present in dir.
func Find(dir string) (string, bool, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}
		return path, true, nil
	}
	return "", false, nil
}

// Load finds and parses the declaration in dir. It returns nil when there is
// none.
func Load(dir string) (*Declaration, error) {
	path, ok, err := Find(dir)
	if err != nil || !ok {
		return nil, err
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is built from the plugins dir
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return d, nil
}
