package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/bubblex/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "bubblex %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
