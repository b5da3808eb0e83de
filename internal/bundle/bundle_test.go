package bundle

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoad_FullBundle(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"plugin.json": `{
  "name": "workflow-pack",
  "version": "1.0.0",
  "settings": {"env": {"A": "1"}}
}`,
		"commands/review.md":         "---\ndescription: Review code\n---\nReview.\n",
		"commands/workflows/plan.md": "Plan.\n",
		"commands/notes.txt":         "not a command\n",
		"agents/reviewer.md":         "You review.\n",
		"agents/README.txt":          "not an agent\n",
		"skills/changelog/SKILL.md":  "# Changelog\n",
		"skills/not-a-skill/misc.md": "no SKILL.md here\n",
	})

	b, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if b.Manifest.Name != "workflow-pack" || b.Manifest.Version != "1.0.0" {
		t.Errorf("manifest = %+v", b.Manifest)
	}
	env := b.Manifest.Settings["env"].(map[string]any)
	if env["A"] != "1" {
		t.Errorf("settings.env.A = %v, want \"1\"", env["A"])
	}

	var names []string
	for _, c := range b.Commands {
		names = append(names, c.Name)
	}
	// Sorted; subdirectories become namespace prefixes; non-.md skipped.
	want := []string{"review", "workflows/plan"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("command names = %v, want %v", names, want)
	}

	if len(b.Agents) != 1 || b.Agents[0].Name != "reviewer" {
		t.Errorf("agents = %+v, want one named reviewer", b.Agents)
	}
	if len(b.Skills) != 1 || b.Skills[0].Name != "changelog" {
		t.Errorf("skills = %+v, want one named changelog", b.Skills)
	}
}

func TestLoad_MissingManifest(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing plugin.json")
	}
	if !strings.Contains(err.Error(), "not a plugin bundle") {
		t.Errorf("error = %v", err)
	}
}

func TestLoad_ManifestNameRequired(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"plugin.json": `{"version": "1.0.0"}`,
	})

	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Fatalf("error = %v, want name-is-required", err)
	}
}

func TestLoad_OptionalDirectories(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"plugin.json": `{"name": "bare"}`,
	})

	b, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(b.Commands) != 0 || len(b.Agents) != 0 || len(b.Skills) != 0 {
		t.Errorf("bundle = %+v, want empty artifact lists", b)
	}
}
