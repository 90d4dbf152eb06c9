package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"retroscope/internal/core/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		bi := version.Info()
		fmt.Fprintf(os.Stdout, "%s %s (commit %s, built %s)\n", bi.Name, bi.Version, bi.Commit, bi.Date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
