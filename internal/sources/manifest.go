package sources

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skelly-dev/doxsearch/internal/languages"
	"github.com/skelly-dev/doxsearch/internal/parser"
	"github.com/skelly-dev/doxsearch/internal/searchdata"
)

// Manifest lists hand-maintained symbols, typically links into documentation
// the generator does not build itself:
//
//	base: https://en.cppreference.com/w/cpp/
//	external: true
//	symbols:
//	  - name: std::vector
//	    kind: class
//	    url: container/vector.html
type Manifest struct {
	Base     string           `yaml:"base"`
	External bool             `yaml:"external"`
	Symbols  []ManifestSymbol `yaml:"symbols"`
}

// ManifestSymbol is one manifest entry. Name may be qualified with "::"
// unless Scope is given. Section defaults from Kind.
type ManifestSymbol struct {
	Name     string `yaml:"name"`
	Scope    string `yaml:"scope,omitempty"`
	Kind     string `yaml:"kind,omitempty"`
	Section  string `yaml:"section,omitempty"`
	URL      string `yaml:"url"`
	External *bool  `yaml:"external,omitempty"`
}

// LoadManifest reads a YAML manifest. Unknown fields are rejected.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	manifest, err := DecodeManifest(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return manifest, nil
}

// DecodeManifest parses manifest YAML.
func DecodeManifest(data []byte) (*Manifest, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var manifest Manifest
	if err := decoder.Decode(&manifest); err != nil {
		if errors.Is(err, io.EOF) {
			return &manifest, nil
		}
		return nil, err
	}
	return &manifest, nil
}

// Resolve turns the manifest entries into index symbols.
func (m *Manifest) Resolve() ([]searchdata.Symbol, error) {
	var base *url.URL
	if m.Base != "" {
		u, err := url.Parse(m.Base)
		if err != nil {
			return nil, fmt.Errorf("invalid base %q: %w", m.Base, err)
		}
		base = u
	}

	symbols := make([]searchdata.Symbol, 0, len(m.Symbols))
	for i, entry := range m.Symbols {
		name := strings.TrimSpace(entry.Name)
		scope := strings.TrimSpace(entry.Scope)
		if scope == "" {
			scope, name = languages.SplitQualifiedName(name, "::")
		}

		section := strings.TrimSpace(entry.Section)
		if section == "" {
			kind, ok := parser.ParseKind(strings.ToLower(strings.TrimSpace(entry.Kind)))
			if !ok {
				return nil, fmt.Errorf("symbols[%d] %q: unknown kind %q", i, entry.Name, entry.Kind)
			}
			section = kind.Section()
		}

		target, err := resolve(base, strings.TrimSpace(entry.URL))
		if err != nil {
			return nil, fmt.Errorf("symbols[%d] %q: %w", i, entry.Name, err)
		}
		if entry.URL == "" {
			target = ""
		}

		external := m.External
		if entry.External != nil {
			external = *entry.External
		}
		symbols = append(symbols, searchdata.Symbol{
			Name:     name,
			Scope:    scope,
			Section:  section,
			URL:      target,
			External: external,
		})
	}
	return symbols, nil
}
