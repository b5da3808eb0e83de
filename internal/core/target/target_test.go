package target

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRegistry(t *testing.T) {
	if len(All()) < 2 {
		t.Fatalf("registered targets = %v, want at least claude-code and opencode", Names(All()))
	}

	if _, ok := ByName("claude-code"); !ok {
		t.Error("claude-code not registered")
	}
	if _, ok := ByName("opencode"); !ok {
		t.Error("opencode not registered")
	}
	if _, ok := ByName("cursor"); ok {
		t.Error("ByName returned a target for an unknown name")
	}

	if got := Default().Name(); got != "claude-code" {
		t.Errorf("Default().Name() = %q, want \"claude-code\"", got)
	}
}

func TestResolve(t *testing.T) {
	tgt, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve(\"\"): %v", err)
	}
	if tgt.Name() != "claude-code" {
		t.Errorf("Resolve(\"\") = %q, want default claude-code", tgt.Name())
	}

	tgt, err = Resolve("opencode")
	if err != nil {
		t.Fatalf("Resolve(opencode): %v", err)
	}
	if tgt.Name() != "opencode" {
		t.Errorf("Resolve(opencode) = %q", tgt.Name())
	}

	_, err = Resolve("cursor")
	if err == nil {
		t.Fatal("Resolve(cursor): expected error")
	}
	if !strings.Contains(err.Error(), "claude-code") {
		t.Errorf("error should list valid names: %v", err)
	}
}

func TestClaudeCodePaths(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	c := NewClaudeCode()
	if got := c.ConfigDir(); got != filepath.Join("/home/tester", ".claude") {
		t.Errorf("ConfigDir = %q", got)
	}

	configDir := "/tmp/claude"
	if got := c.SettingsPath(configDir); got != filepath.Join(configDir, "settings.json") {
		t.Errorf("SettingsPath = %q", got)
	}
	if got := c.CommandsDir(configDir); got != filepath.Join(configDir, "commands") {
		t.Errorf("CommandsDir = %q", got)
	}
	if got := c.AgentsDir(configDir); got != filepath.Join(configDir, "agents") {
		t.Errorf("AgentsDir = %q", got)
	}
	if got := c.SkillsDir(configDir); got != filepath.Join(configDir, "skills") {
		t.Errorf("SkillsDir = %q", got)
	}
}

func TestOpenCodePaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/home/tester/.config")

	o := NewOpenCode()
	if got := o.ConfigDir(); got != filepath.Join("/home/tester/.config", "opencode") {
		t.Errorf("ConfigDir = %q", got)
	}
	if got := o.CommandsDir("/tmp/oc"); got != filepath.Join("/tmp/oc", "command") {
		t.Errorf("CommandsDir = %q", got)
	}
}

func TestOpenCodeConfigDirFallsBackToHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/tester")

	o := NewOpenCode()
	if got := o.ConfigDir(); got != filepath.Join("/home/tester", ".config", "opencode") {
		t.Errorf("ConfigDir = %q", got)
	}
}

func TestClaudeCodeBroadFragment(t *testing.T) {
	c := NewClaudeCode()
	got := c.BroadPermissionFragment([]string{"Grep", "Read"})

	want := map[string]any{
		"permissions": map[string]any{
			"allow": []any{"Grep", "Read"},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("fragment = %v, want %v", got, want)
	}
}

func TestOpenCodeBroadFragment(t *testing.T) {
	o := NewOpenCode()
	got := o.BroadPermissionFragment([]string{"Grep", "Read"})

	want := map[string]any{
		"permission": map[string]any{
			"Grep": "allow",
			"Read": "allow",
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("fragment = %v, want %v", got, want)
	}
}

func TestScopedPermissionEntryUnsupported(t *testing.T) {
	for _, tgt := range All() {
		if _, ok := tgt.ScopedPermissionEntry("review", []string{"Read"}); ok {
			t.Errorf("%s claims per-command permission support", tgt.Name())
		}
	}
}

func TestIsInstalled(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c := NewClaudeCode()
	if c.IsInstalled() {
		t.Error("IsInstalled = true with no config dir")
	}

	if err := os.MkdirAll(filepath.Join(home, ".claude"), 0o755); err != nil {
		t.Fatal(err)
	}
	if !c.IsInstalled() {
		t.Error("IsInstalled = false with config dir present")
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	if got := expandPath("~/.claude"); got != filepath.Join("/home/tester", ".claude") {
		t.Errorf("expandPath(~/.claude) = %q", got)
	}
	if got := expandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("expandPath(/abs/path) = %q", got)
	}
}
