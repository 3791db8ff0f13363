package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"loadable/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "loadable",
	Short: "Lazy-load manifest builder",
	Long:  `loadable builds the lazy-load manifest for a client bundle from a module graph description.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("jobs", 0, "parallel workers (0 = all CPUs)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
