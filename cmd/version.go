package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "fluent", version)
		if info, ok := debug.ReadBuildInfo(); ok {
			fmt.Fprintln(out, "go", info.GoVersion)
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					fmt.Fprintln(out, "commit", s.Value[:7])
				}
			}
		}
	},
}
