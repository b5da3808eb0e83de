package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bakfoo/compound-engineering-plugin/internal/core"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the installed plugin bundle from a target tool",
	Long: `Remove the files and settings keys a previous install wrote, using its
receipt. Settings keys are only removed when their value is still exactly
what the install wrote; anything you changed since stays in place.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := resolveTarget(cmd)
		if err != nil {
			return err
		}

		configDir, _ := cmd.Flags().GetString("config-dir")
		result, err := core.Uninstall(t, core.UninstallOptions{ConfigDir: configDir})
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "%s %s\n", successStyle.Render("Uninstalled"),
			mutedStyle.Render("("+t.DisplayName()+")"))
		fmt.Fprintf(os.Stdout, "  Files removed: %d\n", len(result.RemovedFiles))
		fmt.Fprintf(os.Stdout, "  Settings keys removed: %d\n", len(result.RemovedKeys))
		for _, key := range result.KeptKeys {
			fmt.Fprintf(os.Stdout, "  %s %s\n",
				warnStyle.Render("Kept (modified):"), key)
		}
		return nil
	},
}

func init() {
	addTargetFlags(uninstallCmd)
	rootCmd.AddCommand(uninstallCmd)
}
