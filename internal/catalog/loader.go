// Package catalog loads template catalogs from disk and keeps the active
// registry swappable at runtime.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-sections/internal/templates"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = errors.New("catalog: unsupported file format")
	ErrNoCatalogFiles    = errors.New("catalog: no catalog files found")
)

// Format identifies a catalog file encoding.
type Format string

const (
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// FormatFor infers the format from a file extension.
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	case ".md", ".markdown":
		return FormatMarkdown, true
	}
	return "", false
}

type document struct {
	Templates []templates.ConfigEntry `json:"templates" yaml:"templates"`
}

// Parse decodes catalog entries. YAML and JSON sources hold either a list of
// entries or an object with a "templates" list. Markdown sources hold one
// entry in their front matter; the body becomes the description when none is
// set.
func Parse(data []byte, format Format) ([]templates.ConfigEntry, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatJSON:
		return parseJSON(data)
	case FormatMarkdown:
		return parseMarkdown(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func parseYAML(data []byte) ([]templates.ConfigEntry, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		var entries []templates.ConfigEntry
		if err := node.Decode(&entries); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		return entries, nil
	}
	var doc document
	if err := node.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return doc.Templates, nil
}

func parseJSON(data []byte) ([]templates.ConfigEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var entries []templates.ConfigEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return entries, nil
	}
	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return doc.Templates, nil
}

func parseMarkdown(data []byte) ([]templates.ConfigEntry, error) {
	var entry templates.ConfigEntry
	body, err := frontmatter.Parse(bytes.NewReader(data), &entry)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if strings.TrimSpace(entry.Description) == "" {
		entry.Description = strings.TrimSpace(string(body))
	}
	return []templates.ConfigEntry{entry}, nil
}

// ParseFile reads and parses a single catalog file.
func ParseFile(path string) ([]templates.ConfigEntry, error) {
	format, ok := FormatFor(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	entries, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Load reads a catalog file, or every catalog file of a directory in name
// order. Files with other extensions are skipped.
func Load(path string) ([]templates.ConfigEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if !info.IsDir() {
		return ParseFile(path)
	}

	files, err := Files(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoCatalogFiles, path)
	}

	var entries []templates.ConfigEntry
	for _, file := range files {
		parsed, err := ParseFile(file)
		if err != nil {
			return nil, err
		}
		entries = append(entries, parsed...)
	}
	return entries, nil
}

// Files lists the catalog files directly inside dir, sorted by name.
func Files(dir string) ([]string, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}
	var files []string
	for _, item := range items {
		if item.IsDir() || strings.HasPrefix(item.Name(), ".") {
			continue
		}
		if _, ok := FormatFor(item.Name()); ok {
			files = append(files, filepath.Join(dir, item.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Build loads path and constructs a registry from it.
func Build(path string, opts ...templates.RegistryOption) (*templates.Registry, error) {
	entries, err := Load(path)
	if err != nil {
		return nil, err
	}
	return templates.FromConfig(entries, opts...)
}
