package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "0.3.0"
	commit  = "dev"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the dockprep version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dockprep v%s (%s)\n", version, commit)
	},
}
