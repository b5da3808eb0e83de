package bundle

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Render produces the on-disk content for a command file: YAML frontmatter
// with a fixed field order followed by the Markdown body. Rendering the same
// command always yields identical bytes, so re-installs overwrite files with
// unchanged content.
func Render(cmd Command) ([]byte, error) {
	var buf bytes.Buffer

	if len(cmd.Frontmatter) > 0 {
		yamlBytes, err := marshalOrderedYAML(cmd.Frontmatter)
		if err != nil {
			return nil, fmt.Errorf("marshaling frontmatter: %w", err)
		}
		buf.WriteString("---\n")
		buf.Write(yamlBytes)
		buf.WriteString("---\n")
		if cmd.Body != "" {
			buf.WriteString("\n")
		}
	}

	if cmd.Body != "" {
		buf.WriteString(cmd.Body)
		if !strings.HasSuffix(cmd.Body, "\n") {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// marshalOrderedYAML serializes frontmatter with the well-known fields
// first (description, argument-hint, model, allowed-tools) and everything
// else alphabetically after them.
func marshalOrderedYAML(m map[string]any) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}

	priority := []string{"description", "argument-hint", "model", "allowed-tools"}

	prioritySet := make(map[string]bool)
	for _, k := range priority {
		prioritySet[k] = true
	}

	var rest []string
	for k := range m {
		if !prioritySet[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)

	var ordered []string
	for _, k := range priority {
		if _, ok := m[k]; ok {
			ordered = append(ordered, k)
		}
	}
	ordered = append(ordered, rest...)

	// yaml.Marshal on a map would sort keys, so assemble the mapping
	// node by hand.
	doc := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, key := range ordered {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: key,
		}

		valNode, err := encodeValue(m[key])
		if err != nil {
			return nil, fmt.Errorf("encoding field %q: %w", key, err)
		}

		doc.Content = append(doc.Content, keyNode, valNode)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// encodeValue round-trips a value through yaml.Marshal to get a node that
// can sit inside the hand-built mapping.
func encodeValue(v any) (*yaml.Node, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}

	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		return node.Content[0], nil
	}
	return &node, nil
}
