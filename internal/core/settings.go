// Package core implements the install pipeline: merging plugin settings
// into the target tool's configuration, permission-policy translation, and
// the orchestrated install/uninstall runs. It has zero CLI dependencies and
// is independently testable.
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// ErrMalformedSettings marks an existing settings file that cannot be
// parsed. The run aborts before any backup or write so an unparseable user
// config is never merged against or replaced.
var ErrMalformedSettings = errors.New("settings file is not valid JSON")

// readSettings loads the settings document at path. A missing file is not
// an error: it returns (nil, nil, nil). The raw bytes are returned alongside
// the parsed document so the backup is a verbatim copy of what the user had.
// Parsing goes through hujson so user files with comments or trailing
// commas are accepted.
func readSettings(path string) (map[string]any, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrMalformedSettings, path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(standardized, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrMalformedSettings, path, err)
	}

	return doc, raw, nil
}

// marshalSettings serializes a settings document with two-space indentation
// and a trailing newline. Map keys marshal in sorted order, so identical
// documents always produce identical bytes.
func marshalSettings(doc map[string]any) ([]byte, error) {
	if doc == nil {
		doc = map[string]any{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling settings: %w", err)
	}
	return append(data, '\n'), nil
}

// writeFileAtomic writes content via temp file + rename so a crash mid-write
// never leaves a half-written file at path. Parent directories are created.
func writeFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// escapeJSONKey escapes a key for use with gjson/sjson path syntax.
// Keys containing dots or special characters need to be escaped.
func escapeJSONKey(key string) string {
	needsEscape := false
	for _, c := range key {
		if c == '.' || c == '*' || c == '?' || c == '#' {
			needsEscape = true
			break
		}
	}
	if needsEscape {
		return `\` + key
	}
	return key
}
