package main

import (
	"fmt"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/hbg/mcp-flag-sweeper/config"
	"github.com/hbg/mcp-flag-sweeper/server"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the flag cleanup tools over MCP stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath)
		},
	}
}

func runServe(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := slog.Default()
	s, cleanup, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer cleanup()

	logger.Info("Flagsweeper ready",
		"version", Version,
		"engine", cfg.Engine.Command)

	// Blocks until stdin closes or a termination signal arrives.
	if err := mcpserver.ServeStdio(s); err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("Flagsweeper shutdown complete")
	return nil
}

// loadConfig loads the explicit config file when given, otherwise the
// layered user/project config.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.NewLoader(slog.Default()).Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
