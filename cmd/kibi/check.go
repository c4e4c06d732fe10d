package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kibi-lang/kibi/internal/config"
	"github.com/kibi-lang/kibi/internal/repl"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Elaborate a file and report diagnostics without printing its reduce results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrDefault(configPath)
		if err != nil {
			return err
		}
		r := repl.NewWithVersion(Version, BuildTime)
		r.SetSuppressReductions(true)
		if err := loadPrelude(r, cfg.Prelude); err != nil {
			return err
		}
		if err := elaborateFile(r, args[0]); err != nil {
			return err
		}
		if !r.OK() {
			os.Exit(1)
		}
		fmt.Println("ok")
		return nil
	},
}

func elaborateFile(r *repl.REPL, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	r.ElaborateSource(string(data), path, os.Stdout)
	return nil
}
