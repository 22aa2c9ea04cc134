package scenario

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultDocument []byte

// DefaultDocument returns the embedded catalog document.
func DefaultDocument() []byte {
	return append([]byte(nil), defaultDocument...)
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultDocument)
}

// LoadFile loads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document and validates it.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigurationError{Problems: []string{fmt.Sprintf("parse catalog YAML: %v", err)}}
	}

	if doc.Version != 1 {
		return nil, &ConfigurationError{Problems: []string{fmt.Sprintf("unsupported catalog version: %d", doc.Version)}}
	}

	c, err := NewCatalog(doc.Roles, doc.Scenarios)
	if err != nil {
		return nil, err
	}
	c.colors = doc.Colors
	return c, nil
}
