package actor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template defines a reusable enemy archetype loaded from YAML.
type Template struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Archetype Archetype `yaml:"-"`
	MaxHP     int       `yaml:"max_hp"`
	Attack    int       `yaml:"attack"`
	Taunts    []string  `yaml:"taunts"`

	// RawArchetype is the archetype name as written in YAML; resolved into
	// Archetype during loading.
	RawArchetype string `yaml:"archetype"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, the archetype is
// known, MaxHP >= 1, and Attack >= 1; returns an error on the first
// violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("enemy template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("enemy template %q: name must not be empty", t.ID)
	}
	if _, err := ParseArchetype(t.RawArchetype); err != nil {
		return fmt.Errorf("enemy template %q: %w", t.ID, err)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("enemy template %q: max_hp must be >= 1", t.ID)
	}
	if t.Attack < 1 {
		return fmt.Errorf("enemy template %q: attack must be >= 1", t.ID)
	}
	return nil
}

// LoadTemplateFromBytes parses a single enemy template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template with Archetype resolved, or
// an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	tmpl.Archetype, _ = ParseArchetype(tmpl.RawArchetype)
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed
// templates keyed by ID.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse,
// validate, or duplicate-ID failure; on error, the partial result is
// discarded.
func LoadTemplates(dir string) (map[string]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading enemy template dir %q: %w", dir, err)
	}

	templates := make(map[string]*Template)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if _, ok := templates[tmpl.ID]; ok {
			return nil, fmt.Errorf("duplicate enemy template ID %q in %q", tmpl.ID, path)
		}
		templates[tmpl.ID] = tmpl
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("no enemy template files found in %q", dir)
	}
	return templates, nil
}
