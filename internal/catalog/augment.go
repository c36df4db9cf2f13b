package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AugmentationRecord is curated domain context for one CDM entity. These
// records come from the integration team, not from either catalog side.
type AugmentationRecord struct {
	Domain            string `yaml:"domain,omitempty"`
	DomainDescription string `yaml:"domain_description,omitempty"`
	Entity            string `yaml:"entity"`
	EntityDescription string `yaml:"entity_description,omitempty"`
	Applications      string `yaml:"applications,omitempty"`
}

// AugmentationSet is the YAML file shape for augmentation records.
type AugmentationSet struct {
	Records []AugmentationRecord `yaml:"records"`
}

// LoadAugmentationYAML reads augmentation records from a YAML file.
func LoadAugmentationYAML(path string) (*AugmentationSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading augmentation file: %w", err)
	}
	set := &AugmentationSet{}
	if err := yaml.Unmarshal(data, set); err != nil {
		return nil, fmt.Errorf("parsing augmentation records: %w", err)
	}
	return set, nil
}
