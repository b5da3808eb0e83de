// Package bundle reads the plugin bundle: the command, agent, and skill
// artifacts shipped by the plugin, plus the manifest's settings fragment.
// It is a pure reader: nothing here writes to disk or interprets the
// target tool's configuration.
package bundle

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	manifestFileName = "plugin.json"
	commandsDirName  = "commands"
	agentsDirName    = "agents"
	skillsDirName    = "skills"
)

// Manifest is the parsed plugin.json at the bundle root. Settings is the
// plugin-provided settings fragment merged into the target's configuration
// on install; its structure is opaque to the reader.
type Manifest struct {
	Name        string         `json:"name"`
	Version     string         `json:"version,omitempty"`
	Description string         `json:"description,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
}

// Command is one installable command: a Markdown body plus its parsed YAML
// frontmatter. Name is the slash-separated identifier relative to the
// commands directory (e.g. "workflows/plan").
type Command struct {
	Name         string
	Description  string
	ArgumentHint string
	Model        string
	AllowedTools []string
	Frontmatter  map[string]any
	Body         string
}

// Agent is one agent definition file, carried verbatim.
type Agent struct {
	Name string // filename without extension
	Path string // absolute path within the bundle
}

// Skill is one skill directory (containing SKILL.md and support files).
type Skill struct {
	Name string // directory name
	Path string // absolute path within the bundle
}

// Bundle is the loaded, read-only view of a plugin source tree.
type Bundle struct {
	Dir      string
	Manifest Manifest
	Commands []Command
	Agents   []Agent
	Skills   []Skill
}

// Load reads a plugin bundle from dir. The manifest is required; commands,
// agents, and skills directories are each optional.
func Load(dir string) (*Bundle, error) {
	manifest, err := loadManifest(dir)
	if err != nil {
		return nil, err
	}

	commands, err := loadCommands(filepath.Join(dir, commandsDirName))
	if err != nil {
		return nil, fmt.Errorf("loading commands: %w", err)
	}

	agents, err := loadAgents(filepath.Join(dir, agentsDirName))
	if err != nil {
		return nil, fmt.Errorf("loading agents: %w", err)
	}

	skills, err := loadSkills(filepath.Join(dir, skillsDirName))
	if err != nil {
		return nil, fmt.Errorf("loading skills: %w", err)
	}

	return &Bundle{
		Dir:      dir,
		Manifest: manifest,
		Commands: commands,
		Agents:   agents,
		Skills:   skills,
	}, nil
}

func loadManifest(dir string) (Manifest, error) {
	path := filepath.Join(dir, manifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, fmt.Errorf("no %s found in %s (not a plugin bundle)", manifestFileName, dir)
		}
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing %s: %w", manifestFileName, err)
	}
	if m.Name == "" {
		return Manifest{}, fmt.Errorf("%s: name is required", manifestFileName)
	}
	return m, nil
}

// loadCommands walks the commands directory recursively; subdirectories
// become namespace prefixes in the command name.
func loadCommands(dir string) ([]Command, error) {
	if !dirExists(dir) {
		return nil, nil
	}

	var commands []Command
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(strings.TrimSuffix(rel, ".md"))

		cmd, err := ParseCommandFile(path)
		if err != nil {
			return fmt.Errorf("command %s: %w", name, err)
		}
		cmd.Name = name
		commands = append(commands, cmd)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(commands, func(i, j int) bool {
		return commands[i].Name < commands[j].Name
	})
	return commands, nil
}

func loadAgents(dir string) ([]Agent, error) {
	if !dirExists(dir) {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var agents []Agent
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		agents = append(agents, Agent{
			Name: strings.TrimSuffix(entry.Name(), ".md"),
			Path: filepath.Join(dir, entry.Name()),
		})
	}

	sort.Slice(agents, func(i, j int) bool { return agents[i].Name < agents[j].Name })
	return agents, nil
}

func loadSkills(dir string) ([]Skill, error) {
	if !dirExists(dir) {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var skills []Skill
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		// Only directories with a SKILL.md qualify.
		skillPath := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(filepath.Join(skillPath, "SKILL.md")); err != nil {
			continue
		}
		skills = append(skills, Skill{
			Name: entry.Name(),
			Path: skillPath,
		})
	}

	sort.Slice(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })
	return skills, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
