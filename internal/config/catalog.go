package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog lists the countries and categories articles may reference.
// It satisfies article.Catalog.
type Catalog struct {
	Countries  []string `yaml:"countries"`
	Categories []string `yaml:"categories"`
}

// LoadCatalog reads the catalog at path, or the embedded default when path is empty.
// The path comes from CATALOG_PATH, not from request input.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		// #nosec G304 -- path is operator configuration
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
		data = b
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog document. Unknown keys are rejected and
// an empty document yields an empty catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &c, nil
}

// Override replaces non-empty lists, typically from CATALOG_COUNTRIES and CATALOG_CATEGORIES.
func (c *Catalog) Override(countries, categories []string) {
	if len(countries) > 0 {
		c.Countries = countries
	}
	if len(categories) > 0 {
		c.Categories = categories
	}
}

// HasCountry reports whether country is listed. An empty list accepts anything.
func (c *Catalog) HasCountry(country string) bool {
	return len(c.Countries) == 0 || slices.Contains(c.Countries, country)
}

// HasCategory reports whether category is listed. An empty list accepts anything.
func (c *Catalog) HasCategory(category string) bool {
	return len(c.Categories) == 0 || slices.Contains(c.Categories, category)
}
