package setup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigName is the name under which the default configuration is listed.
	DefaultConfigName = "default"

	configFilePrefix = "server-config"
)

var configExtensions = []string{".json", ".yaml", ".yml"}

// Decode reads a configuration document in YAML form.
// JSON documents indented with spaces are valid YAML and are accepted too.
// Unknown fields are rejected.
func Decode(r io.Reader) (*Configuration, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	doc := &Document{}
	if err := decoder.Decode(doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ValidationError{Problems: []string{"configuration is empty"}}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return unwrap(doc)
}

// DecodeJSON reads a configuration document in JSON form.
// Unknown fields are rejected.
func DecodeJSON(r io.Reader) (*Configuration, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	doc := &Document{}
	if err := decoder.Decode(doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ValidationError{Problems: []string{"configuration is empty"}}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return unwrap(doc)
}

func unwrap(doc *Document) (*Configuration, error) {
	if doc.ServerSetup == nil {
		return nil, &ValidationError{Problems: []string{"missing serverSetup section"}}
	}
	return doc.ServerSetup, nil
}

// CatalogEntry describes a configuration file found in a Catalog.
type CatalogEntry struct {
	Name string `json:"name"`
	File string `json:"file"`
}

// Catalog is a directory of configuration files.
// The default configuration lives in server-config.json (or .yaml/.yml); a named
// configuration lives in server-config-<name>.json (or .yaml/.yml).
type Catalog struct {
	dir string
}

// NewCatalog creates a Catalog over the given directory.
func NewCatalog(dir string) *Catalog {
	return &Catalog{
		dir: dir,
	}
}

// Dir returns the directory the Catalog reads from.
func (c *Catalog) Dir() string {
	return c.dir
}

// List returns every configuration in the directory, default first and the rest by name.
func (c *Catalog) List() ([]CatalogEntry, error) {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration directory %s: %w", c.dir, err)
	}

	seen := map[string]bool{}
	var entries []CatalogEntry
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name, ok := configName(f.Name())
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, CatalogEntry{Name: name, File: f.Name()})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name == DefaultConfigName {
			return true
		}
		if entries[j].Name == DefaultConfigName {
			return false
		}
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// Load reads the named configuration. An empty name or DefaultConfigName selects the default.
// ErrConfigNotFound is returned when no file matches.
func (c *Catalog) Load(name string) (*Configuration, error) {
	path, err := c.find(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	decode := Decode
	if filepath.Ext(path) == ".json" {
		decode = DecodeJSON
	}

	cfg, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// WriteDefault writes DefaultConfiguration as the default configuration file.
// An existing default configuration is left untouched and its path is returned with os.ErrExist.
func (c *Catalog) WriteDefault() (string, error) {
	if path, err := c.find(DefaultConfigName); err == nil {
		return path, fmt.Errorf("%s: %w", path, os.ErrExist)
	}

	data, err := json.MarshalIndent(&Document{ServerSetup: DefaultConfiguration()}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode default configuration: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", c.dir, err)
	}

	path := filepath.Join(c.dir, configFilePrefix+".json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}

func (c *Catalog) find(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%q: %w", name, ErrConfigNotFound)
	}

	base := configFilePrefix
	if name != "" && name != DefaultConfigName {
		base = configFilePrefix + "-" + name
	}

	for _, ext := range configExtensions {
		path := filepath.Join(c.dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if name == "" {
		name = DefaultConfigName
	}
	return "", fmt.Errorf("%q: %w", name, ErrConfigNotFound)
}

// configName maps a file name to the configuration name it holds.
func configName(file string) (string, bool) {
	ext := filepath.Ext(file)
	known := false
	for _, e := range configExtensions {
		if ext == e {
			known = true
			break
		}
	}
	if !known {
		return "", false
	}

	base := strings.TrimSuffix(file, ext)
	if base == configFilePrefix {
		return DefaultConfigName, true
	}

	// server-config-default.* is never loaded since the default name selects server-config.*.
	name, ok := strings.CutPrefix(base, configFilePrefix+"-")
	if !ok || name == "" || name == DefaultConfigName {
		return "", false
	}
	return name, true
}

// DefaultConfiguration returns the configuration written by Catalog.WriteDefault.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		Categories: []CategorySpec{
			{
				Name: "🛕 Temple Grounds",
				Channels: []ChannelSpec{
					{
						Name:        "temple-entrance",
						Type:        ChannelTypeText,
						Description: "Welcome to the Temple",
					},
				},
			},
		},
		Roles: []RoleSpec{
			{
				Name:  "Pilgrim",
				Color: "#DDA0DD",
			},
		},
	}
}
