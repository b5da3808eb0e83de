package bundle

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseCommandFile reads a Markdown command file with YAML frontmatter.
func ParseCommandFile(path string) (Command, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Command{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseCommandContent(raw, path)
}

// ParseCommandContent parses command content from raw bytes. The source
// parameter is used only for error messages.
func ParseCommandContent(raw []byte, source string) (Command, error) {
	content := string(raw)

	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "---") {
		// Frontmatter is optional for commands: a bare prompt body is valid.
		return Command{Body: content, Frontmatter: map[string]any{}}, nil
	}

	start := strings.Index(content, "---")
	rest := content[start+3:]

	if len(rest) > 0 && rest[0] == '\n' {
		rest = rest[1:]
	} else if len(rest) > 1 && rest[0] == '\r' && rest[1] == '\n' {
		rest = rest[2:]
	}

	// An immediate closing delimiter means empty frontmatter.
	var fmContent, body string
	if strings.HasPrefix(rest, "---") {
		body = rest[3:]
	} else {
		end := strings.Index(rest, "\n---")
		if end < 0 {
			return Command{}, fmt.Errorf("no closing frontmatter delimiter in %s", source)
		}
		fmContent = rest[:end]
		body = rest[end+4:]
	}

	if len(body) > 0 && body[0] == '\n' {
		body = body[1:]
	} else if len(body) > 1 && body[0] == '\r' && body[1] == '\n' {
		body = body[2:]
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(fmContent), &fm); err != nil {
		return Command{}, fmt.Errorf("parsing frontmatter in %s: %w", source, err)
	}
	if fm == nil {
		fm = make(map[string]any)
	}

	cmd := Command{
		Frontmatter: fm,
		Body:        body,
	}
	cmd.Description, _ = fm["description"].(string)
	cmd.ArgumentHint, _ = fm["argument-hint"].(string)
	cmd.Model, _ = fm["model"].(string)
	cmd.AllowedTools = parseToolList(fm["allowed-tools"])

	return cmd, nil
}

// parseToolList normalizes the allowed-tools frontmatter field. Command
// authors write it either as a YAML list or as a comma-separated string;
// both forms appear in published bundles.
func parseToolList(v any) []string {
	switch vv := v.(type) {
	case []any:
		var tools []string
		for _, elem := range vv {
			if s, ok := elem.(string); ok && strings.TrimSpace(s) != "" {
				tools = append(tools, strings.TrimSpace(s))
			}
		}
		return tools
	case string:
		if strings.TrimSpace(vv) == "" {
			return nil
		}
		var tools []string
		for _, part := range strings.Split(vv, ",") {
			if part = strings.TrimSpace(part); part != "" {
				tools = append(tools, part)
			}
		}
		return tools
	default:
		return nil
	}
}
