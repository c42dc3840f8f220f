package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a configuration encoding.
type Format int

const (
	// FormatYAML is YAML (.yaml, .yml).
	FormatYAML Format = iota

	// FormatJSON is JSON (.json).
	FormatJSON
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// FormatOf picks the format for path by extension.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("unsupported config file extension: %q", ext)
	}
}

// Parse decodes data as f. An empty document yields an empty Config.
func Parse(data []byte, f Format) (Config, error) {
	var m map[string]any
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return Config{}, fmt.Errorf("parse yaml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &m); err != nil {
			return Config{}, fmt.Errorf("parse json: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("parse: unsupported format %s", f)
	}
	return New(m), nil
}

// FromYAML parses YAML data into a Config.
func FromYAML(data []byte) (Config, error) {
	return Parse(data, FormatYAML)
}

// FromJSON parses JSON data into a Config.
func FromJSON(data []byte) (Config, error) {
	return Parse(data, FormatJSON)
}

// FromFile reads path and parses it in the format its extension names.
func FromFile(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data, format)
}

// LoadDefinition reads a file and decodes it into a Definition.
func LoadDefinition(path string) (Definition, error) {
	cfg, err := FromFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	return Decode(cfg)
}
