package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hbg/mcp-flag-sweeper/config"
	"github.com/hbg/mcp-flag-sweeper/engine"
	"github.com/hbg/mcp-flag-sweeper/registry"
	"github.com/hbg/mcp-flag-sweeper/sweep"
)

func flagsCmd(configPath *string) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "flags",
		Short: "Load and print the flag registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			info, err := newSweeper(cfg).ListFlags(cmd.Context(), dir)
			if err != nil {
				return fmt.Errorf("load flags: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory to look for the flag config (defaults to configured search paths)")
	return cmd
}

// newSweeper builds a sweeper from config, mirroring the server wiring
// for one-shot CLI use.
func newSweeper(cfg *config.Config) *sweep.Sweeper {
	logger := slog.Default()

	locator := registry.NewLocator(cfg.Registry.SearchPaths...)
	if len(cfg.Registry.Filenames) > 0 {
		locator.Filenames = cfg.Registry.Filenames
	}

	eng := engine.NewExecEngine(cfg.Engine.Command, cfg.Engine.Args, cfg.Engine.Timeout, logger)
	return sweep.New(eng, registry.NewCache(), locator, registry.NewFormatRegistry(), logger)
}
