package target

// ClaudeCode implements the Target interface for Claude Code.
type ClaudeCode struct {
	BaseTarget
}

// NewClaudeCode creates a configured Claude Code target.
func NewClaudeCode() *ClaudeCode {
	return &ClaudeCode{BaseTarget{
		name:         "claude-code",
		displayName:  "Claude Code",
		configDir:    "~/.claude",
		settingsFile: "settings.json",
		commandsDir:  "commands",
		agentsDir:    "agents",
		skillsDir:    "skills",
		detectPaths:  []string{"~/.claude"},
	}}
}

// BroadPermissionFragment renders the settings.json permissions block:
// { "permissions": { "allow": [ ... ] } }.
func (c *ClaudeCode) BroadPermissionFragment(tools []string) map[string]any {
	allow := make([]any, len(tools))
	for i, tool := range tools {
		allow[i] = tool
	}
	return map[string]any{
		"permissions": map[string]any{
			"allow": allow,
		},
	}
}

// Claude Code's settings format has no per-command permission scope; the
// command file's own allowed-tools frontmatter is the only per-command
// restriction it understands. ScopedPermissionEntry stays the BaseTarget
// default (unsupported).

func init() { Register(NewClaudeCode()) }
