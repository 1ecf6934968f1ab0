// Package catalog holds static recycling guides for common waste types.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtin []byte

type Guide struct {
	WasteType string   `yaml:"waste_type"`
	Steps     []string `yaml:"steps"`
	// Default is set on the guide returned for an unknown waste type.
	Default bool `yaml:"-"`
}

type file struct {
	Guides  []Guide `yaml:"guides"`
	Default Guide   `yaml:"default"`
}

type Catalog struct {
	guides  []Guide
	byType  map[string]Guide
	generic Guide
}

// Load returns the built-in catalog.
func Load() (*Catalog, error) {
	return Parse(builtin)
}

// Parse reads a catalog from YAML. Every guide needs a waste type and at
// least one step, and the default guide needs steps.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(f.Default.Steps) == 0 {
		return nil, fmt.Errorf("catalog has no default guide")
	}

	c := &Catalog{byType: make(map[string]Guide, len(f.Guides)), generic: f.Default}
	for i, g := range f.Guides {
		if strings.TrimSpace(g.WasteType) == "" || len(g.Steps) == 0 {
			return nil, fmt.Errorf("catalog guide %d is incomplete", i)
		}
		key := normalize(g.WasteType)
		if _, dup := c.byType[key]; dup {
			return nil, fmt.Errorf("catalog has duplicate guide for %q", g.WasteType)
		}
		c.byType[key] = g
		c.guides = append(c.guides, g)
	}
	return c, nil
}

// Lookup finds the guide for wasteType ignoring case and surrounding space.
// Unknown types get the default guide under the requested name.
func (c *Catalog) Lookup(wasteType string) Guide {
	if g, ok := c.byType[normalize(wasteType)]; ok {
		return g
	}
	return Guide{WasteType: wasteType, Steps: c.generic.Steps, Default: true}
}

// Guides lists the specific guides in file order.
func (c *Catalog) Guides() []Guide {
	out := make([]Guide, len(c.guides))
	copy(out, c.guides)
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
