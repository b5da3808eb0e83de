package core

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// installFixture installs a small bundle into a temp config dir and returns
// the dir and the settings path.
func installFixture(t *testing.T) (string, string) {
	t.Helper()
	b := writeBundle(t, `{
  "name": "workflow-pack",
  "settings": {
    "env": {"WORKFLOW_PACK": "1", "PACK_MODE": "fast"}
  }
}`, map[string]string{
		"commands/review.md":         "Review.\n",
		"commands/workflows/plan.md": "Plan.\n",
		"agents/reviewer.md":         "You review code.\n",
		"skills/changelog/SKILL.md":  "# Changelog\n",
	})
	configDir := t.TempDir()

	inst := NewInstaller(claudeCode(t))
	result, err := inst.Install(b, InstallOptions{ConfigDir: configDir})
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	return configDir, result.SettingsPath
}

func TestUninstall_RemovesFilesAndOwnedKeys(t *testing.T) {
	configDir, settingsPath := installFixture(t)

	result, err := Uninstall(claudeCode(t), UninstallOptions{ConfigDir: configDir})
	if err != nil {
		t.Fatalf("Uninstall: %v", err)
	}

	for _, path := range []string{
		filepath.Join(configDir, "commands", "review.md"),
		filepath.Join(configDir, "commands", "workflows", "plan.md"),
		filepath.Join(configDir, "agents", "reviewer.md"),
		filepath.Join(configDir, "skills", "changelog"),
	} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s still exists after uninstall", path)
		}
	}

	// Emptied parent directories are pruned.
	if _, err := os.Stat(filepath.Join(configDir, "commands", "workflows")); !os.IsNotExist(err) {
		t.Error("empty namespace directory not pruned")
	}

	wantRemoved := []string{"env.PACK_MODE", "env.WORKFLOW_PACK"}
	if !reflect.DeepEqual(result.RemovedKeys, wantRemoved) {
		t.Errorf("RemovedKeys = %v, want %v", result.RemovedKeys, wantRemoved)
	}
	if len(result.KeptKeys) != 0 {
		t.Errorf("KeptKeys = %v, want none", result.KeptKeys)
	}

	// The emptied env object is pruned from the document.
	doc := readJSON(t, settingsPath)
	if _, ok := doc["env"]; ok {
		t.Errorf("empty env object not pruned: %v", doc)
	}

	receipt, err := ReadReceipt(configDir)
	if err != nil {
		t.Fatal(err)
	}
	if receipt != nil {
		t.Error("receipt still present after uninstall")
	}
}

func TestUninstall_KeepsUserModifiedKeys(t *testing.T) {
	configDir, settingsPath := installFixture(t)

	// User changes one installed value after the install.
	edited := `{
  "env": {"PACK_MODE": "fast", "WORKFLOW_PACK": "2"}
}`
	if err := os.WriteFile(settingsPath, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Uninstall(claudeCode(t), UninstallOptions{ConfigDir: configDir})
	if err != nil {
		t.Fatalf("Uninstall: %v", err)
	}

	if !reflect.DeepEqual(result.RemovedKeys, []string{"env.PACK_MODE"}) {
		t.Errorf("RemovedKeys = %v, want [env.PACK_MODE]", result.RemovedKeys)
	}
	if !reflect.DeepEqual(result.KeptKeys, []string{"env.WORKFLOW_PACK"}) {
		t.Errorf("KeptKeys = %v, want [env.WORKFLOW_PACK]", result.KeptKeys)
	}

	doc := readJSON(t, settingsPath)
	env, ok := doc["env"].(map[string]any)
	if !ok {
		t.Fatalf("env missing after uninstall: %v", doc)
	}
	if env["WORKFLOW_PACK"] != "2" {
		t.Errorf("env.WORKFLOW_PACK = %v, want user's \"2\"", env["WORKFLOW_PACK"])
	}
	if _, ok := env["PACK_MODE"]; ok {
		t.Error("env.PACK_MODE not removed")
	}
}

func TestUninstall_UserSettingsDeleted(t *testing.T) {
	configDir, settingsPath := installFixture(t)

	if err := os.Remove(settingsPath); err != nil {
		t.Fatal(err)
	}

	// Nothing to clean in settings; files still go away.
	result, err := Uninstall(claudeCode(t), UninstallOptions{ConfigDir: configDir})
	if err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	if len(result.RemovedKeys) != 0 {
		t.Errorf("RemovedKeys = %v, want none", result.RemovedKeys)
	}
	if _, err := os.Stat(filepath.Join(configDir, "commands", "review.md")); !os.IsNotExist(err) {
		t.Error("command file still exists")
	}
}

func TestUninstall_NoReceipt(t *testing.T) {
	configDir := t.TempDir()

	_, err := Uninstall(claudeCode(t), UninstallOptions{ConfigDir: configDir})
	if err == nil {
		t.Fatal("expected error without a receipt")
	}
	if !strings.Contains(err.Error(), "nothing to uninstall") {
		t.Errorf("error = %v, want mention of nothing to uninstall", err)
	}
}

func TestReadStatus(t *testing.T) {
	configDir, settingsPath := installFixture(t)

	st, err := ReadStatus(claudeCode(t), configDir)
	if err != nil {
		t.Fatalf("ReadStatus: %v", err)
	}
	if st.Receipt == nil {
		t.Fatal("Receipt = nil, want installed receipt")
	}
	if st.Receipt.Bundle != "workflow-pack" {
		t.Errorf("Bundle = %q, want \"workflow-pack\"", st.Receipt.Bundle)
	}
	for _, ks := range st.Keys {
		if !ks.Present || !ks.Unchanged {
			t.Errorf("key %s: present=%v unchanged=%v, want true/true", ks.Path, ks.Present, ks.Unchanged)
		}
	}

	// Drift one value and delete the other.
	edited := `{
  "env": {"WORKFLOW_PACK": "drifted"}
}`
	if err := os.WriteFile(settingsPath, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}

	st, err = ReadStatus(claudeCode(t), configDir)
	if err != nil {
		t.Fatalf("ReadStatus: %v", err)
	}
	byPath := map[string]KeyStatus{}
	for _, ks := range st.Keys {
		byPath[ks.Path] = ks
	}
	if ks := byPath["env.WORKFLOW_PACK"]; !ks.Present || ks.Unchanged {
		t.Errorf("env.WORKFLOW_PACK = %+v, want present and changed", ks)
	}
	if ks := byPath["env.PACK_MODE"]; ks.Present {
		t.Errorf("env.PACK_MODE = %+v, want absent", ks)
	}
}

func TestReadStatus_NothingInstalled(t *testing.T) {
	st, err := ReadStatus(claudeCode(t), t.TempDir())
	if err != nil {
		t.Fatalf("ReadStatus: %v", err)
	}
	if st.Receipt != nil {
		t.Errorf("Receipt = %+v, want nil", st.Receipt)
	}
}
