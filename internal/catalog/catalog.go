// Package catalog loads rule catalogs from YAML and Starlark files and
// writes catalogs back out as YAML.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapproof/pkg/rules"
)

// LoadError reports a catalog file that could not be loaded.
type LoadError struct {
	File    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("rules/%s: %s", filepath.Base(e.File), e.Message)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ErrUnsupportedFormat is returned for catalog files that are neither YAML
// nor Starlark.
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// file is the top-level layout of a YAML catalog.
type file struct {
	Rules []rules.Definition `yaml:"rules"`
}

// Supported reports whether path has a catalog file extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".star":
		return true
	default:
		return false
	}
}

// Load reads the rule definitions in path and builds them into a new
// catalog. The format is chosen by extension.
func Load(path string) (*rules.Catalog, error) {
	defs, err := LoadDefinitions(path)
	if err != nil {
		return nil, err
	}
	c, err := rules.BuildAll(defs)
	if err != nil {
		return nil, &LoadError{File: path, Message: err.Error(), Err: err}
	}
	return c, nil
}

// LoadDefinitions reads the rule definitions in path without building them.
func LoadDefinitions(path string) ([]rules.Definition, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: catalog path is supplied by the user
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("failed to read file: %v", err), Err: err}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(path, content)
	case ".star":
		return ExecStarlark(path, content)
	default:
		return nil, &LoadError{File: path, Message: ErrUnsupportedFormat.Error(), Err: ErrUnsupportedFormat}
	}
}

// ParseYAML decodes YAML catalog content. Unknown keys are rejected.
func ParseYAML(name string, content []byte) ([]rules.Definition, error) {
	var f file
	dec := yaml.NewDecoder(strings.NewReader(string(content)))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{File: name, Message: fmt.Sprintf("invalid YAML: %v", err), Err: err}
	}

	for i, d := range f.Rules {
		if d.Name == "" {
			return nil, &LoadError{File: name, Message: fmt.Sprintf("rule %d has no name", i+1), Err: rules.ErrEmptyName}
		}
	}
	return f.Rules, nil
}

// Resolve assembles the catalog a proof cites: the built-in rules when
// builtin is set, followed by the rules in path when it is not empty.
func Resolve(builtin bool, path string) (*rules.Catalog, error) {
	c := rules.NewCatalog()
	if builtin {
		c = rules.Builtin()
	}
	if path == "" {
		return c, nil
	}

	extra, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.Merge(extra); err != nil {
		return nil, &LoadError{File: path, Message: err.Error(), Err: err}
	}
	return c, nil
}

// Write encodes every rule of c as a YAML catalog, in registration order.
func Write(w io.Writer, c *rules.Catalog) error {
	f := file{Rules: make([]rules.Definition, 0, c.Len())}
	for _, rule := range c.All() {
		f.Rules = append(f.Rules, rules.Define(rule))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return enc.Close()
}
