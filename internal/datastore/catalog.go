package datastore

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog is the built-in set of templates and programs. Its templates are
// never stored and cannot be deleted.
type Catalog struct {
	Templates []WorkoutTemplate `yaml:"templates"`
	Programs  []Program         `yaml:"programs"`
}

var builtin = mustParseCatalog(catalogYAML)

func ParseCatalog(raw []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	for i := range c.Templates {
		if c.Templates[i].ID == "" {
			return Catalog{}, fmt.Errorf("parse catalog: template %d has no id", i)
		}
		c.Templates[i].IsDefault = true
	}
	for i, p := range c.Programs {
		if p.ID == "" || p.Weeks <= 0 {
			return Catalog{}, fmt.Errorf("parse catalog: program %d needs an id and weeks", i)
		}
	}
	return c, nil
}

func mustParseCatalog(raw []byte) Catalog {
	c, err := ParseCatalog(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Catalog) template(id string) (WorkoutTemplate, bool) {
	for _, t := range c.Templates {
		if t.ID == id {
			return t, true
		}
	}
	return WorkoutTemplate{}, false
}

func (c Catalog) program(id string) (Program, bool) {
	for _, p := range c.Programs {
		if p.ID == id {
			return p, true
		}
	}
	return Program{}, false
}
