package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bakfoo/compound-engineering-plugin/internal/bundle"
	"github.com/bakfoo/compound-engineering-plugin/internal/core/target"
)

const backupTimeFormat = "20060102-150405"

// Installer runs the install pipeline against one target:
// read existing settings, back them up, merge, write bundle files, write
// settings. The settings write is always last, so a failure writing any
// bundle file never leaves a config referencing files that don't exist.
type Installer struct {
	target target.Target
}

// NewInstaller creates an Installer for the given target.
func NewInstaller(t target.Target) *Installer {
	return &Installer{target: t}
}

// InstallOptions configures an install run.
type InstallOptions struct {
	ConfigDir string         // target config root; defaults to the target's global dir
	Mode      PermissionMode // permission-policy translation mode
}

// InstallResult reports what an install run wrote.
type InstallResult struct {
	RunID        string
	SettingsPath string
	BackupPath   string // empty on first install (nothing to back up)
	CommandFiles []string
	AgentFiles   []string
	SkillDirs    []string
	MergedKeys   []string // top-level settings keys the bundle contributed
}

// Install performs one run. The pre-existing settings file stays
// byte-identical on any fatal path: it is only ever replaced by the final
// atomic write, and that write happens only after every bundle file landed.
func (inst *Installer) Install(b *bundle.Bundle, opts InstallOptions) (*InstallResult, error) {
	configDir := opts.ConfigDir
	if configDir == "" {
		configDir = inst.target.ConfigDir()
	}

	// Permission translation is pure; an unsupported mapping fails the run
	// before any file is touched.
	fragment, err := BuildPermissionFragment(b.Commands, opts.Mode, inst.target)
	if err != nil {
		return nil, err
	}

	settingsPath := inst.target.SettingsPath(configDir)
	existing, raw, err := readSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	// Back up the user's settings before anything else writes. Skipped on
	// first install; fatal when required, since no merge proceeds without a
	// safety copy.
	backupPath := ""
	if raw != nil {
		backupPath = fmt.Sprintf("%s.backup.%s", settingsPath, time.Now().Format(backupTimeFormat))
		if err := os.WriteFile(backupPath, raw, 0o644); err != nil {
			return nil, fmt.Errorf("backing up %s: %w", settingsPath, err)
		}
	}

	// The bundle's static settings and the permission fragment together form
	// the incoming document; the user's existing values win every conflict.
	incoming := Merge(b.Manifest.Settings, fragment)
	merged := Merge(existing, incoming)

	result := &InstallResult{
		RunID:        uuid.NewString(),
		SettingsPath: settingsPath,
		BackupPath:   backupPath,
	}

	// Write bundle files, attempting every artifact even after a failure so
	// one bad file doesn't mask the rest. Any failure blocks the settings
	// write below.
	var writeErrs []error

	for _, c := range b.Commands {
		dest := filepath.Join(inst.target.CommandsDir(configDir), filepath.FromSlash(c.Name)+".md")
		if err := writeCommandFile(c, dest); err != nil {
			writeErrs = append(writeErrs, fmt.Errorf("command %s: %w", c.Name, err))
			continue
		}
		result.CommandFiles = append(result.CommandFiles, dest)
	}

	for _, a := range b.Agents {
		dest := filepath.Join(inst.target.AgentsDir(configDir), a.Name+".md")
		if err := copyFile(a.Path, dest); err != nil {
			writeErrs = append(writeErrs, fmt.Errorf("agent %s: %w", a.Name, err))
			continue
		}
		result.AgentFiles = append(result.AgentFiles, dest)
	}

	for _, s := range b.Skills {
		dest := filepath.Join(inst.target.SkillsDir(configDir), s.Name)
		if err := copySkillDir(s.Path, dest); err != nil {
			writeErrs = append(writeErrs, fmt.Errorf("skill %s: %w", s.Name, err))
			continue
		}
		result.SkillDirs = append(result.SkillDirs, dest)
	}

	if err := errors.Join(writeErrs...); err != nil {
		return nil, fmt.Errorf("writing bundle files (settings left untouched): %w", err)
	}

	// Last step: replace the settings document atomically.
	data, err := marshalSettings(merged)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(settingsPath, data); err != nil {
		if backupPath != "" {
			return nil, fmt.Errorf("writing %s (original preserved at %s): %w",
				settingsPath, backupPath, err)
		}
		return nil, fmt.Errorf("writing %s: %w", settingsPath, err)
	}

	for key := range incoming {
		result.MergedKeys = append(result.MergedKeys, key)
	}
	sort.Strings(result.MergedKeys)

	receipt := &Receipt{
		RunID:          result.RunID,
		Bundle:         b.Manifest.Name,
		Version:        b.Manifest.Version,
		InstalledAt:    time.Now().UTC(),
		PermissionMode: opts.Mode.String(),
		Commands:       relPaths(configDir, result.CommandFiles),
		Agents:         relPaths(configDir, result.AgentFiles),
		Skills:         relPaths(configDir, result.SkillDirs),
		Settings:       incoming,
	}
	if err := WriteReceipt(configDir, receipt); err != nil {
		return nil, err
	}

	return result, nil
}

// writeCommandFile renders a command and writes it, overwriting any
// previous version. Parent directories are created for namespaced commands.
func writeCommandFile(c bundle.Command, dest string) error {
	rendered, err := bundle.Render(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, rendered, 0o644)
}

// copySkillDir replaces dst with a copy of the skill directory at src.
func copySkillDir(src, dst string) error {
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("cleaning skill dir: %w", err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("creating skill dir: %w", err)
	}
	return copyDirectory(src, dst)
}

// copyDirectory copies the contents of src to dst, skipping .git.
func copyDirectory(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		if filepath.Base(path) == ".git" {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		dstPath := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(dstPath, 0o755)
		}
		return copyFile(path, dstPath)
	})
}

// copyFile copies a single file, creating the destination directory.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, info.Mode())
}

// relPaths converts absolute paths to slash-separated paths relative to base.
func relPaths(base string, paths []string) []string {
	result := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(base, p)
		if err != nil {
			rel = p
		}
		result = append(result, filepath.ToSlash(rel))
	}
	return result
}
