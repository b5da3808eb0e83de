package target

import (
	"os"
	"path/filepath"
	"strings"
)

// BaseTarget provides the common path and detection plumbing. Individual
// targets embed this and implement the permission-shaping methods.
type BaseTarget struct {
	name         string
	displayName  string
	configDir    string   // global config root, may contain ~ or $VAR
	settingsFile string   // settings filename inside the config root
	commandsDir  string   // commands subdirectory
	agentsDir    string   // agents subdirectory
	skillsDir    string   // skills subdirectory
	detectPaths  []string // files/dirs indicating global installation
}

func (b *BaseTarget) Name() string        { return b.name }
func (b *BaseTarget) DisplayName() string { return b.displayName }

func (b *BaseTarget) ConfigDir() string { return expandPath(b.configDir) }

func (b *BaseTarget) SettingsPath(configDir string) string {
	return filepath.Join(configDir, b.settingsFile)
}

func (b *BaseTarget) CommandsDir(configDir string) string {
	return filepath.Join(configDir, b.commandsDir)
}

func (b *BaseTarget) AgentsDir(configDir string) string {
	return filepath.Join(configDir, b.agentsDir)
}

func (b *BaseTarget) SkillsDir(configDir string) string {
	return filepath.Join(configDir, b.skillsDir)
}

func (b *BaseTarget) IsInstalled() bool {
	for _, p := range b.detectPaths {
		if dirExists(expandPath(p)) {
			return true
		}
	}
	return false
}

// ScopedPermissionEntry is the default: no per-command permission structure.
func (b *BaseTarget) ScopedPermissionEntry(string, []string) (map[string]any, bool) {
	return nil, false
}

// expandPath expands ~ to home directory and $VAR / $XDG_CONFIG to env values.
func expandPath(p string) string {
	if strings.Contains(p, "$XDG_CONFIG") {
		xdgConfig := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfig == "" {
			home, _ := os.UserHomeDir()
			xdgConfig = filepath.Join(home, ".config")
		}
		p = strings.ReplaceAll(p, "$XDG_CONFIG", xdgConfig)
	}

	if strings.Contains(p, "$") {
		p = os.Expand(p, func(key string) string {
			if key == "XDG_CONFIG" {
				return ""
			}
			return os.Getenv(key)
		})
	}

	if strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		p = filepath.Join(home, p[2:])
	} else if p == "~" {
		home, _ := os.UserHomeDir()
		p = home
	}

	return p
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
