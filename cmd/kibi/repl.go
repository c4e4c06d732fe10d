package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kibi-lang/kibi/internal/config"
	"github.com/kibi-lang/kibi/internal/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive elaborator session",
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
		r.Start(os.Stdin, os.Stdout)
		return nil
	},
}

// loadPrelude elaborates each configured prelude file into r's session
// before interactive input starts, in the order listed.
func loadPrelude(r *repl.REPL, files []string) error {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		r.ElaborateSource(string(data), f, os.Stdout)
	}
	return nil
}
