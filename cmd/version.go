package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spigell/resumatch/internal/strategy"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the supported analyzer modes",
	Run: func(_ *cobra.Command, _ []string) {
		modes := make([]string, 0, len(strategy.Modes))
		for _, m := range strategy.Modes {
			modes = append(modes, string(m))
		}
		fmt.Printf("%s version: %s\n", app, version)
		fmt.Printf("analyzer modes: %s\n", strings.Join(modes, ", "))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
