package provider

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source is one RSS feed in the provider source list.
type Source struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}

// SourcesConfig is the YAML source list structure:
//
// sources:
//   - name: example
//     url: https://example.com/rss
//     category: technology
type SourcesConfig struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads the RSS source list from a YAML file.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sources file: %w", err)
	}
	defer f.Close()

	var cfg SourcesConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode sources file: %w", err)
	}

	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s lists no feeds", path)
	}

	return cfg.Sources, nil
}
