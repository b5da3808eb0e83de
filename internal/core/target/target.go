// Package target defines the Target abstraction for the plugin installer.
//
// A Target represents an AI coding tool (Claude Code, OpenCode, ...) that can
// receive the plugin bundle. Each target knows its own config paths, detection
// logic, and the shape of its global permission configuration. Targets are
// self-contained Go structs, no JSON definition file.
package target

import (
	"fmt"
	"strings"
)

// Target defines how an AI coding tool receives the plugin bundle.
type Target interface {
	// Identity
	Name() string        // machine name: "claude-code", "opencode"
	DisplayName() string // human name: "Claude Code", "OpenCode"

	// Detection
	IsInstalled() bool // globally installed on this machine

	// Paths. configDir is the tool's config root (the target's default when
	// the caller passes the result of ConfigDir()).
	ConfigDir() string // default global config root, expanded
	SettingsPath(configDir string) string
	CommandsDir(configDir string) string
	AgentsDir(configDir string) string
	SkillsDir(configDir string) string

	// Permission shaping. BroadPermissionFragment renders a global allow
	// entry for the given tool union in this target's settings format.
	// ScopedPermissionEntry renders a per-command entry when the target's
	// settings format has such a structure; the second return is false when
	// it does not.
	BroadPermissionFragment(tools []string) map[string]any
	ScopedPermissionEntry(commandName string, tools []string) (map[string]any, bool)
}

// --- Registry ---

var targets []Target

// Register adds a target to the global registry.
func Register(t Target) { targets = append(targets, t) }

// All returns all registered targets.
func All() []Target { return targets }

// Default returns the default target (Claude Code).
func Default() Target {
	t, _ := ByName("claude-code")
	return t
}

// ByName returns the target with the given machine name, if registered.
func ByName(name string) (Target, bool) {
	for _, t := range targets {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// Resolve returns the target for a --target flag value, defaulting to
// Claude Code when the value is empty. Unknown names are an error listing
// the valid choices.
func Resolve(name string) (Target, error) {
	if name == "" {
		return Default(), nil
	}
	t, ok := ByName(name)
	if !ok {
		var valid []string
		for _, reg := range targets {
			valid = append(valid, reg.Name())
		}
		return nil, fmt.Errorf("unknown target %q; available: %s",
			name, strings.Join(valid, ", "))
	}
	return t, nil
}

// Detect returns all globally installed targets.
func Detect() []Target {
	var detected []Target
	for _, t := range targets {
		if t.IsInstalled() {
			detected = append(detected, t)
		}
	}
	return detected
}

// Names returns the machine names of the given targets.
func Names(ts []Target) []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name()
	}
	return names
}
