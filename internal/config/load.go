package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	yaml "go.yaml.in/yaml/v3"
)

// Load reads, decodes, normalizes and validates a config file. YAML is the
// native format; JSON parses too since YAML is a superset. Unknown keys are
// rejected so typos fail loudly instead of silently disabling a section.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Default returns the config used when no file is given: built-in defaults
// and an empty format list.
func Default() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

var formatEntryKeys = map[string]struct{}{
	"title":    {},
	"body":     {},
	"icon":     {},
	"urgency":  {},
	"muted":    {},
	"timeout":  {},
	"category": {},
}

// UnmarshalYAML decodes the formats section from its mapping node directly,
// because declaration order is the match priority and a plain map would
// lose it. Entry keys are checked by hand: node-level Decode does not
// enforce KnownFields.
func (l *FormatList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("formats: expected a mapping of topic filters, got %s", nodeKind(node))
	}

	out := make(FormatList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]

		var pattern string
		if err := keyNode.Decode(&pattern); err != nil {
			return fmt.Errorf("formats: line %d: bad topic filter key: %w", keyNode.Line, err)
		}

		if valNode.Kind != yaml.MappingNode {
			return fmt.Errorf("formats %q: expected a mapping of format fields, got %s", pattern, nodeKind(valNode))
		}
		for j := 0; j+1 < len(valNode.Content); j += 2 {
			key := valNode.Content[j].Value
			if _, ok := formatEntryKeys[key]; !ok {
				return fmt.Errorf("formats %q: unknown field %q", pattern, key)
			}
		}

		var fe FormatEntry
		if err := valNode.Decode(&fe); err != nil {
			return fmt.Errorf("formats %q: %w", pattern, err)
		}
		out = append(out, NamedFormat{Pattern: pattern, Entry: fe})
	}

	*l = out
	return nil
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
