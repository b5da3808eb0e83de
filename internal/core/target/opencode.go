package target

// OpenCode implements the Target interface for the OpenCode AI coding tool.
type OpenCode struct {
	BaseTarget
}

// NewOpenCode creates a configured OpenCode target.
func NewOpenCode() *OpenCode {
	return &OpenCode{BaseTarget{
		name:         "opencode",
		displayName:  "OpenCode",
		configDir:    "$XDG_CONFIG/opencode",
		settingsFile: "opencode.json",
		commandsDir:  "command",
		agentsDir:    "agent",
		skillsDir:    "skills",
		detectPaths:  []string{"$XDG_CONFIG/opencode"},
	}}
}

// BroadPermissionFragment renders OpenCode's per-tool permission map:
// { "permission": { "<tool>": "allow", ... } }.
func (o *OpenCode) BroadPermissionFragment(tools []string) map[string]any {
	perms := make(map[string]any, len(tools))
	for _, tool := range tools {
		perms[tool] = "allow"
	}
	return map[string]any{
		"permission": perms,
	}
}

// OpenCode's permission map is keyed by tool, not by command, so there is no
// per-command scope either.

func init() { Register(NewOpenCode()) }
