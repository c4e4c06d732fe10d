package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kibi-lang/kibi/internal/config"
	"github.com/kibi-lang/kibi/internal/repl"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Elaborate a file and print its reduce results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrDefault(configPath)
		if err != nil {
			return err
		}
		r := repl.NewWithVersion(Version, BuildTime)
		if cfg.Verbose {
			r.HandleCommand(":verbose", os.Stdout)
		}
		if err := loadPrelude(r, cfg.Prelude); err != nil {
			return err
		}
		if err := elaborateFile(r, args[0]); err != nil {
			return err
		}
		if !r.OK() {
			os.Exit(1)
		}
		return nil
	},
}
