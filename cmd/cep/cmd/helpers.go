package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bakfoo/compound-engineering-plugin/internal/core/target"
)

// resolveTarget parses the --target flag into a target.Target.
// An empty flag means the default target (Claude Code).
func resolveTarget(cmd *cobra.Command) (target.Target, error) {
	name, _ := cmd.Flags().GetString("target")
	return target.Resolve(name)
}

// addTargetFlags adds the --target and --config-dir flags shared by
// install, uninstall, and status.
func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("target", "t", "", "Target tool (claude-code, opencode; default: claude-code)")
	cmd.Flags().String("config-dir", "", "Override the target's config directory (mainly for testing)")
}
