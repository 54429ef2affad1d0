package loader

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotMapping is returned for YAML documents whose root is not a mapping.
var ErrNotMapping = errors.New("YAML description must be a mapping")

// parseYAML reads the YAML form of a description. Keys are section names
// (same aliases as the text format); values are a scalar or a list of
// scalars, rules written in the text syntax:
//
//	kind: pda
//	states: [q0, q1]
//	alphabet: ["(", ")"]
//	transitions:
//	  - q0 > (,ε > q0,(
func parseYAML(data []byte, warn func(line int, msg string)) (*document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	doc := newDocument()

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return doc, nil
	}

	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]

		canon, ok := canonicalSection(key.Value)
		if !ok {
			warn(key.Line, "ignoring unknown key "+key.Value)

			continue
		}

		doc.declare(canon, key.Line)

		switch value.Kind { //nolint:exhaustive
		case yaml.ScalarNode:
			addScalar(doc, canon, value)
		case yaml.SequenceNode:
			for _, item := range value.Content {
				if item.Kind != yaml.ScalarNode {
					warn(item.Line, "ignoring non-scalar entry in "+key.Value)

					continue
				}

				addScalar(doc, canon, item)
			}
		default:
			warn(value.Line, "ignoring non-scalar value of "+key.Value)
		}
	}

	return doc, nil
}

func addScalar(doc *document, section string, node *yaml.Node) {
	if node.Tag == "!!null" {
		return
	}

	if text := strings.TrimSpace(node.Value); text != "" {
		doc.add(section, node.Line, text)
	}
}
