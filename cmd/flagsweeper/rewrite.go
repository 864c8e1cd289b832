package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hbg/mcp-flag-sweeper/sweep"
)

func rewriteCmd(configPath *string) *cobra.Command {
	var (
		flagName string
		language string
		write    bool
	)

	cmd := &cobra.Command{
		Use:   "rewrite [file]",
		Short: "Rewrite stale flag checks in a file or stdin",
		Long: `Rewrite reads a source file (or stdin when no file is given),
synthesizes cleanup rules for the named flag from the flag config, and
prints the transformed code to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			var (
				code []byte
				path string
			)
			if len(args) == 1 {
				path = args[0]
				code, err = os.ReadFile(path)
			} else {
				code, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			out, err := newSweeper(cfg).Apply(cmd.Context(), sweep.Request{
				Code:     string(code),
				Language: language,
				FlagName: flagName,
			})
			if err != nil {
				return fmt.Errorf("rewrite: %w", err)
			}

			if out.Message != "" {
				fmt.Fprintln(os.Stderr, out.Message)
			}

			if write && path != "" {
				if !out.Changed {
					return nil
				}
				info, err := os.Stat(path)
				if err != nil {
					return fmt.Errorf("stat input: %w", err)
				}
				return os.WriteFile(path, []byte(out.Code), info.Mode().Perm())
			}

			fmt.Print(out.Code)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagName, "flag", "", "Flag to clean up (required)")
	cmd.Flags().StringVar(&language, "language", "java", "Programming language of the input")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite the file in place instead of printing")
	_ = cmd.MarkFlagRequired("flag")

	return cmd
}
