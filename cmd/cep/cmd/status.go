package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bakfoo/compound-engineering-plugin/internal/core"
	"github.com/bakfoo/compound-engineering-plugin/internal/core/target"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what's installed for a target tool",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := resolveTarget(cmd)
		if err != nil {
			return err
		}

		configDir, _ := cmd.Flags().GetString("config-dir")
		st, err := core.ReadStatus(t, configDir)
		if err != nil {
			return err
		}

		if st.Receipt == nil {
			fmt.Fprintf(os.Stdout, "Nothing installed for %s\n", t.DisplayName())
			return nil
		}

		r := st.Receipt
		fmt.Fprintf(os.Stdout, "%s %s", successStyle.Render("Installed:"), r.Bundle)
		if r.Version != "" {
			fmt.Fprintf(os.Stdout, " %s", r.Version)
		}
		fmt.Fprintf(os.Stdout, " %s\n", mutedStyle.Render("("+t.DisplayName()+")"))
		fmt.Fprintf(os.Stdout, "  Installed at: %s\n", r.InstalledAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Fprintf(os.Stdout, "  Permission mode: %s\n", r.PermissionMode)
		fmt.Fprintf(os.Stdout, "  Commands: %d  Agents: %d  Skills: %d\n",
			len(r.Commands), len(r.Agents), len(r.Skills))

		for _, ks := range st.Keys {
			switch {
			case !ks.Present:
				fmt.Fprintf(os.Stdout, "  %s %s\n", dangerStyle.Render("missing:"), ks.Path)
			case !ks.Unchanged:
				fmt.Fprintf(os.Stdout, "  %s %s\n", warnStyle.Render("modified:"), ks.Path)
			default:
				fmt.Fprintf(os.Stdout, "  %s %s\n", mutedStyle.Render("ok:"), ks.Path)
			}
		}
		return nil
	},
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List supported target tools and whether they're installed",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range target.All() {
			marker := mutedStyle.Render("not detected")
			if t.IsInstalled() {
				marker = successStyle.Render("detected")
			}
			fmt.Fprintf(os.Stdout, "%-14s %-12s %s\n", t.Name(), marker, t.ConfigDir())
		}
	},
}

func init() {
	addTargetFlags(statusCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(targetsCmd)
}
