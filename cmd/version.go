package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cloudpilot-ai/discoverctl/internal/message"
	"github.com/cloudpilot-ai/discoverctl/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of discoverctl",
	Long:  `All software has versions. This is discoverctl's.`,
	Run: func(cmd *cobra.Command, args []string) {
		message.Info(version.FullVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
