package core

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bakfoo/compound-engineering-plugin/internal/bundle"
	"github.com/bakfoo/compound-engineering-plugin/internal/core/target"
)

// PermissionMode selects how per-command allowed-tool lists translate into
// the target's global permission configuration.
type PermissionMode int

const (
	// PermissionNone writes no permission keys at all. The default: the
	// target settings format has no per-command restriction concept, and
	// inventing global grants from per-command metadata would misrepresent
	// what the command authors declared.
	PermissionNone PermissionMode = iota

	// PermissionBroad writes one global allow entry holding the union of
	// every tool referenced by any command in the bundle.
	PermissionBroad

	// PermissionFromCommand writes one scoped entry per command, when the
	// target's settings format has a per-command permission structure.
	PermissionFromCommand
)

// ErrUnknownPermissionMode is returned by ParsePermissionMode for any value
// outside {none, broad, from-command}.
var ErrUnknownPermissionMode = errors.New("unknown permission mode")

// ParsePermissionMode parses a --permissions flag value. The empty string
// means the default mode, none.
func ParsePermissionMode(s string) (PermissionMode, error) {
	switch s {
	case "", "none":
		return PermissionNone, nil
	case "broad":
		return PermissionBroad, nil
	case "from-command":
		return PermissionFromCommand, nil
	default:
		return PermissionNone, fmt.Errorf("%w: %q (valid: none, broad, from-command)",
			ErrUnknownPermissionMode, s)
	}
}

// String returns the flag spelling of the mode.
func (m PermissionMode) String() string {
	switch m {
	case PermissionBroad:
		return "broad"
	case PermissionFromCommand:
		return "from-command"
	default:
		return "none"
	}
}

// UnsupportedMappingError reports a command whose allowed-tools list has no
// per-command equivalent in the target's settings format. from-command mode
// surfaces this instead of degrading to broad or none.
type UnsupportedMappingError struct {
	Command string
	Target  string
}

func (e *UnsupportedMappingError) Error() string {
	return fmt.Sprintf("command %q: %s has no per-command permission structure (use --permissions none or broad)",
		e.Command, e.Target)
}

// BuildPermissionFragment translates command tool restrictions into a
// settings fragment for the given mode and target. The fragment is merged
// like any other plugin key, so user-set permission values still win.
// A nil fragment means no permission keys are written.
func BuildPermissionFragment(commands []bundle.Command, mode PermissionMode, t target.Target) (map[string]any, error) {
	switch mode {
	case PermissionNone:
		return nil, nil
	case PermissionBroad:
		return buildBroadFragment(commands, t), nil
	case PermissionFromCommand:
		return buildFromCommandFragment(commands, t)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPermissionMode, mode)
	}
}

// buildBroadFragment grants the union of all tools referenced across all
// commands, written once as a single global entry.
func buildBroadFragment(commands []bundle.Command, t target.Target) map[string]any {
	seen := make(map[string]bool)
	var tools []string
	for _, c := range commands {
		for _, tool := range c.AllowedTools {
			if !seen[tool] {
				seen[tool] = true
				tools = append(tools, tool)
			}
		}
	}
	if len(tools) == 0 {
		return nil
	}
	sort.Strings(tools)
	return t.BroadPermissionFragment(tools)
}

// buildFromCommandFragment maps each command's restriction list into a
// per-command entry. Commands without restrictions contribute nothing;
// the first command the target cannot represent fails the whole build.
func buildFromCommandFragment(commands []bundle.Command, t target.Target) (map[string]any, error) {
	var fragment map[string]any
	for _, c := range commands {
		if len(c.AllowedTools) == 0 {
			continue
		}
		entry, ok := t.ScopedPermissionEntry(c.Name, c.AllowedTools)
		if !ok {
			return nil, &UnsupportedMappingError{Command: c.Name, Target: t.DisplayName()}
		}
		fragment = Merge(fragment, entry)
	}
	return fragment, nil
}
