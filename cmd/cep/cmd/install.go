package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bakfoo/compound-engineering-plugin/internal/bundle"
	"github.com/bakfoo/compound-engineering-plugin/internal/core"
)

var installCmd = &cobra.Command{
	Use:   "install [bundle-dir]",
	Short: "Install the plugin bundle into a target tool",
	Long: `Install the plugin bundle from a directory (default: current directory).

The run is strictly ordered: read the existing settings file, back it up,
merge the bundle's settings fragment (your existing values always win),
write one file per command/agent/skill, then replace the settings file
atomically. If any bundle file fails to write, the settings file is left
untouched.

Permission modes control how per-command allowed-tools lists translate into
the target's global permission config:

  none          write no permission keys (default)
  broad         one global allow entry with the union of all commands' tools
  from-command  one scoped entry per command, where the target supports it`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Validate the mode before anything touches the filesystem.
		modeFlag, _ := cmd.Flags().GetString("permissions")
		mode, err := core.ParsePermissionMode(modeFlag)
		if err != nil {
			return err
		}

		t, err := resolveTarget(cmd)
		if err != nil {
			return err
		}

		bundleDir := "."
		if len(args) == 1 {
			bundleDir = args[0]
		}
		bundleDir, err = filepath.Abs(bundleDir)
		if err != nil {
			return fmt.Errorf("resolving bundle directory: %w", err)
		}

		b, err := bundle.Load(bundleDir)
		if err != nil {
			return err
		}

		configDir, _ := cmd.Flags().GetString("config-dir")
		installer := core.NewInstaller(t)
		result, err := installer.Install(b, core.InstallOptions{
			ConfigDir: configDir,
			Mode:      mode,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "%s %s", successStyle.Render("Installed:"), b.Manifest.Name)
		if b.Manifest.Version != "" {
			fmt.Fprintf(os.Stdout, " %s", b.Manifest.Version)
		}
		fmt.Fprintf(os.Stdout, " %s\n", mutedStyle.Render("("+t.DisplayName()+")"))

		fmt.Fprintf(os.Stdout, "  Commands: %d  Agents: %d  Skills: %d\n",
			len(result.CommandFiles), len(result.AgentFiles), len(result.SkillDirs))
		fmt.Fprintf(os.Stdout, "  Settings: %s\n", result.SettingsPath)
		if len(result.MergedKeys) > 0 {
			fmt.Fprintf(os.Stdout, "  Merged keys: %s\n", strings.Join(result.MergedKeys, ", "))
		}
		if result.BackupPath != "" {
			fmt.Fprintf(os.Stdout, "  Backup: %s\n", result.BackupPath)
		}
		return nil
	},
}

func init() {
	addTargetFlags(installCmd)
	installCmd.Flags().StringP("permissions", "p", "none", "Permission mode: none, broad, or from-command")
	rootCmd.AddCommand(installCmd)
}
