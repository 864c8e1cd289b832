package main

import (
	"io"
	"testing"
)

func TestRootCmdSubcommands(t *testing.T) {
	cmd := rootCmd()

	want := []string{"serve", "flags", "rewrite", "version"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand %q to be registered", name)
		}
	}
}

func TestRootCmdFlags(t *testing.T) {
	cmd := rootCmd()

	if cmd.PersistentFlags().Lookup("config") == nil {
		t.Error("expected persistent --config flag")
	}
	if cmd.PersistentFlags().Lookup("log-level") == nil {
		t.Error("expected persistent --log-level flag")
	}
}

func TestRewriteCmdRequiresFlag(t *testing.T) {
	configPath := ""
	cmd := rewriteCmd(&configPath)
	cmd.SetArgs([]string{})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	if err := cmd.Execute(); err == nil {
		t.Error("expected error when --flag is missing")
	}
}
