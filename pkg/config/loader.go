package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
)

// Load builds the configuration from defaults, the optional file at path and
// the process environment. Flags are applied afterwards by the caller.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	ApplyEnv(cfg, os.LookupEnv)
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto cfg. Unknown keys are rejected.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(cfg, data)
}

// Parse overlays YAML data onto cfg and records file sources for every key present.
func Parse(cfg *Config, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if len(doc.Content) > 0 {
		markSources(cfg, doc.Content[0], "")
	}
	return nil
}

func markSources(cfg *Config, node *yaml.Node, prefix string) {
	if node.Kind != yaml.MappingNode {
		if prefix != "" {
			cfg.set(prefix, SourceFile)
		}
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if prefix != "" {
			key = prefix + "." + key
		}
		markSources(cfg, node.Content[i+1], key)
	}
}
