package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata variables, set by -ldflags at compile time.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Run: func(cmd *cobra.Command, args []string) {
		printTitle("origin-brew " + Version)
		printKeyValue("Commit", CommitSHA)
		printKeyValue("Built", BuildDate)
		printKeyValue("Go", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
