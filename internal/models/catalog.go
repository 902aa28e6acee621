package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConsultationType is one bookable service.
type ConsultationType struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description,omitempty"`
	Minutes     int    `yaml:"minutes" json:"minutes"`
	Fee         int    `yaml:"fee" json:"fee"`
	Online      bool   `yaml:"online" json:"online"`
}

// Catalog holds the consultation types offered by the clinic.
type Catalog struct {
	Types []ConsultationType `yaml:"consultation_types" json:"consultation_types"`
}

// IDs returns the type ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.Types))
	for i, t := range c.Types {
		ids[i] = t.ID
	}
	return ids
}

// LoadCatalog reads and parses the consultation types file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog YAML: %w", err)
	}
	if len(catalog.Types) == 0 {
		return nil, fmt.Errorf("catalog %s defines no consultation types", path)
	}
	seen := make(map[string]bool, len(catalog.Types))
	for _, t := range catalog.Types {
		if t.ID == "" {
			return nil, fmt.Errorf("catalog %s has a consultation type without id", path)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("catalog %s has duplicate consultation type %q", path, t.ID)
		}
		seen[t.ID] = true
	}
	return &catalog, nil
}
