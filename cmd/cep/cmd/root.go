package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "cep",
	Short: "Install the compound engineering plugin bundle into AI coding tools",
	Long: `cep installs a plugin bundle (commands, agents, skills) into an AI
coding tool's configuration directory without destroying what's already there.

Commands are written as standalone files, the bundle's settings fragment is
deep-merged into the tool's settings (your values always win on conflict),
and the original settings file is backed up before anything is written.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cep %s (commit: %s, built: %s)\n", Version, Commit, Date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
