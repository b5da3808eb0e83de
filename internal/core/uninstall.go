package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/bakfoo/compound-engineering-plugin/internal/core/target"
)

// UninstallOptions configures an uninstall run.
type UninstallOptions struct {
	ConfigDir string // target config root; defaults to the target's global dir
}

// UninstallResult reports what an uninstall run removed and what it left
// alone.
type UninstallResult struct {
	RemovedFiles []string
	RemovedKeys  []string // dotted settings paths deleted
	KeptKeys     []string // settings paths the user changed since install
}

// Uninstall reverses an install run using its receipt. Bundle files are
// removed outright; settings keys are removed only when their current value
// still equals what the install wrote; anything the user changed stays.
func Uninstall(t target.Target, opts UninstallOptions) (*UninstallResult, error) {
	configDir := opts.ConfigDir
	if configDir == "" {
		configDir = t.ConfigDir()
	}

	receipt, err := ReadReceipt(configDir)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, fmt.Errorf("no install receipt in %s, nothing to uninstall", configDir)
	}

	result := &UninstallResult{}

	for _, rel := range receipt.Commands {
		path := filepath.Join(configDir, filepath.FromSlash(rel))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing command file %s: %w", rel, err)
		}
		result.RemovedFiles = append(result.RemovedFiles, path)
		cleanupEmptyDir(filepath.Dir(path))
	}

	for _, rel := range receipt.Agents {
		path := filepath.Join(configDir, filepath.FromSlash(rel))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing agent file %s: %w", rel, err)
		}
		result.RemovedFiles = append(result.RemovedFiles, path)
		cleanupEmptyDir(filepath.Dir(path))
	}

	for _, rel := range receipt.Skills {
		path := filepath.Join(configDir, filepath.FromSlash(rel))
		if err := os.RemoveAll(path); err != nil {
			return nil, fmt.Errorf("removing skill dir %s: %w", rel, err)
		}
		result.RemovedFiles = append(result.RemovedFiles, path)
		cleanupEmptyDir(filepath.Dir(path))
	}

	if len(receipt.Settings) > 0 {
		if err := removeOwnedKeys(t.SettingsPath(configDir), receipt.Settings, result); err != nil {
			return nil, err
		}
	}

	if err := RemoveReceipt(configDir); err != nil {
		return nil, err
	}

	return result, nil
}

// removeOwnedKeys deletes the receipt's settings leaves from the settings
// file, skipping any leaf whose current value no longer matches what the
// install wrote. Parent objects emptied by the deletions are pruned.
func removeOwnedKeys(settingsPath string, fragment map[string]any, result *UninstallResult) error {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // user deleted their settings; nothing to clean
		}
		return fmt.Errorf("reading settings: %w", err)
	}
	content := string(data)

	for _, leaf := range collectLeaves(fragment, "") {
		cur := gjson.Get(content, leaf.path)
		if !cur.Exists() {
			continue
		}
		if !reflect.DeepEqual(cur.Value(), jsonShape(leaf.value)) {
			result.KeptKeys = append(result.KeptKeys, leaf.path)
			continue
		}
		content, err = sjson.Delete(content, leaf.path)
		if err != nil {
			return fmt.Errorf("removing settings key %s: %w", leaf.path, err)
		}
		result.RemovedKeys = append(result.RemovedKeys, leaf.path)
	}

	content = pruneEmptyObjects(content, fragment, "")

	return writeFileAtomic(settingsPath, []byte(content))
}

// leaf is one non-object value in the installed settings fragment, with its
// gjson path.
type leaf struct {
	path  string
	value any
}

// collectLeaves flattens a fragment into sorted gjson leaf paths.
func collectLeaves(fragment map[string]any, prefix string) []leaf {
	keys := make([]string, 0, len(fragment))
	for k := range fragment {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var leaves []leaf
	for _, k := range keys {
		path := escapeJSONKey(k)
		if prefix != "" {
			path = prefix + "." + path
		}
		if sub, ok := fragment[k].(map[string]any); ok {
			leaves = append(leaves, collectLeaves(sub, path)...)
			continue
		}
		leaves = append(leaves, leaf{path: path, value: fragment[k]})
	}
	return leaves
}

// pruneEmptyObjects removes objects the fragment introduced that are now
// empty. Walks bottom-up so an emptied child can empty its parent.
func pruneEmptyObjects(content string, fragment map[string]any, prefix string) string {
	keys := make([]string, 0, len(fragment))
	for k := range fragment {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		sub, ok := fragment[k].(map[string]any)
		if !ok {
			continue
		}
		path := escapeJSONKey(k)
		if prefix != "" {
			path = prefix + "." + path
		}
		content = pruneEmptyObjects(content, sub, path)

		cur := gjson.Get(content, path)
		if cur.IsObject() && len(cur.Map()) == 0 {
			if updated, err := sjson.Delete(content, path); err == nil {
				content = updated
			}
		}
	}
	return content
}

// jsonShape normalizes a value to the types json.Unmarshal produces, so
// fragments built in Go compare cleanly against parsed document values.
func jsonShape(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// cleanupEmptyDir removes dir if it exists and is empty.
func cleanupEmptyDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	if len(entries) == 0 {
		_ = os.Remove(dir)
	}
}
