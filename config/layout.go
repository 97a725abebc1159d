package config

import (
	"fmt"
	"os"

	"github.com/yeremiapane/restaurant-seating/models"
	"gopkg.in/yaml.v3"
)

// Layout is the optional YAML file with named table sets. Default names the
// set used to seed an empty roster.
type Layout struct {
	Default string            `yaml:"default"`
	Sets    []models.TableSet `yaml:"sets"`
}

func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}

	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	for _, set := range layout.Sets {
		if _, err := set.Build(); err != nil {
			return nil, err
		}
	}
	if layout.Default != "" {
		if _, ok := layout.Set(layout.Default); !ok {
			return nil, fmt.Errorf("default layout %q is not defined", layout.Default)
		}
	}
	return &layout, nil
}

func (l *Layout) Set(name string) (models.TableSet, bool) {
	for _, set := range l.Sets {
		if set.Name == name {
			return set, true
		}
	}
	return models.TableSet{}, false
}
