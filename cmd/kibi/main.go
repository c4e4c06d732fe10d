// Command kibi is the CLI front end for the elaborator: it exposes a
// REPL plus one-shot `check`/`run` commands over a source file, wiring
// together internal/config, internal/surface, internal/elaborate and
// internal/repl.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version info, set by ldflags during release builds.
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"

	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "kibi",
	Short: "kibi is a small dependently-typed kernel language",
	Long:  "kibi elaborates axiom/def/inductive/reduce declarations against a bidirectional, metavariable-driven kernel.",
}

func main() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "kibi.yaml", "path to a kibi.yaml settings file")

	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("kibi %s (commit %s, built %s)\n", Version, Commit, BuildTime)
		return nil
	},
}
