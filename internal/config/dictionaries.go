package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DictionaryDef describes one entry of spec §6's
// `dictionaries.<id>.path` / `.wordLength` / `.name` / `.description`
// configuration family.
type DictionaryDef struct {
	ID          string `yaml:"id"`
	Path        string `yaml:"path"`
	WordLength  int    `yaml:"wordLength"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Manifest is the top-level shape of a dictionaries.yaml file.
type Manifest struct {
	Dictionaries []DictionaryDef `yaml:"dictionaries"`
}

// LoadManifest reads and parses a dictionary manifest file. An empty
// path is not an error: callers fall back to the bundled embedded
// sample dictionaries.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return &Manifest{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary manifest %q: %w", path, err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing dictionary manifest %q: %w", path, err)
	}

	for _, def := range manifest.Dictionaries {
		if def.ID == "" {
			return nil, fmt.Errorf("dictionary manifest %q: entry missing id", path)
		}
		if def.WordLength < 4 || def.WordLength > 8 {
			return nil, fmt.Errorf("dictionary manifest %q: entry %q has invalid wordLength %d", path, def.ID, def.WordLength)
		}
	}

	return &manifest, nil
}
