package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads a KNX catalog from a YAML file.
func LoadYAML(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	c := &Catalog{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return c, nil
}

// WriteYAML writes the catalog to a YAML file at the given path.
func (c *Catalog) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling catalog: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Summary returns a human-readable summary of the catalog.
func (c *Catalog) Summary() string {
	var totalFields, totalRefs, totalKeys int
	for _, t := range c.Tables {
		totalFields += len(t.Fields)
		for i := range t.Fields {
			if t.Fields[i].IsReference() {
				totalRefs++
			}
			if t.Fields[i].IsKey {
				totalKeys++
			}
		}
	}
	return fmt.Sprintf("Found %d tables, %d fields (%d keys, %d references)",
		len(c.Tables), totalFields, totalKeys, totalRefs)
}

// LoadMappingsYAML reads an ETN mapping set from a YAML file.
func LoadMappingsYAML(path string) (*MappingSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping file: %w", err)
	}
	m := &MappingSet{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing mappings: %w", err)
	}
	return m, nil
}

// WriteYAML writes the mapping set to a YAML file at the given path.
func (m *MappingSet) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling mappings: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Export is the reconciliation output bundle written by the export
// command: canonical rows plus the per-entity summary view.
type Export struct {
	Rows      []CanonicalRow  `yaml:"rows"`
	Summaries []EntitySummary `yaml:"summaries,omitempty"`
}

// WriteYAML writes the export bundle to a YAML file at the given path.
func (e *Export) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := yaml.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
